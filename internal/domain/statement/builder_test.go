package statement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	user := Principal{Email: "learner@example.com", Username: "learner", FirstName: "Ada", LastName: "Lovelace"}
	video := Video{ID: 7, Name: "Intro to Gears", Description: "<p>A <b>short</b> intro.</p>", URL: "https://cdn.example.com/gears.mp4"}
	course := Course{ID: 3, Name: "Mechanics 101"}
	return NewBuilder(user, video, course, "https://lms.example.com/", "TestLMS")
}

func TestBuildPlayProgress(t *testing.T) {
	st := testBuilder().BuildPlay(30, 120)

	require.NotNil(t, st.Result)
	assert.Equal(t, 30.0, st.Result.Extensions[ExtTime])
	assert.Equal(t, 120.0, st.Result.Extensions[ExtLength])
	assert.Equal(t, 0.25, st.Result.Extensions[ExtProgress])
	assert.Equal(t, VerbPlayed, st.Verb.ID)
	assert.Equal(t, XAPIVersion, st.Version)
	assert.NotEmpty(t, st.ID)
	assert.NotEmpty(t, st.Timestamp)
}

func TestBuildPlayZeroLengthProgress(t *testing.T) {
	st := testBuilder().BuildPlay(30, 0)
	assert.Equal(t, 0.0, st.Result.Extensions[ExtProgress])
}

func TestBuildPauseProgress(t *testing.T) {
	st := testBuilder().BuildPause(60, 120)
	assert.Equal(t, VerbPaused, st.Verb.ID)
	assert.Equal(t, 0.5, st.Result.Extensions[ExtProgress])
}

func TestBuildSeekExtensions(t *testing.T) {
	st := testBuilder().BuildSeek(10, 90, 120)

	require.NotNil(t, st.Result)
	assert.Equal(t, VerbSeeked, st.Verb.ID)
	assert.Equal(t, 10.0, st.Result.Extensions[ExtTimeFrom])
	assert.Equal(t, 90.0, st.Result.Extensions[ExtTimeTo])
	assert.Equal(t, 120.0, st.Result.Extensions[ExtLength])
	assert.Equal(t, 0.75, st.Result.Extensions[ExtProgress])
}

func TestBuildCompletedSuccessThreshold(t *testing.T) {
	cases := []struct {
		watched float64
		success bool
	}{
		{0.8, true},
		{0.7999, false},
		{1.0, true},
		{0.0, false},
	}

	for _, tc := range cases {
		st := testBuilder().BuildCompleted(100, 120, tc.watched)
		require.NotNil(t, st.Result)
		require.NotNil(t, st.Result.Success)
		assert.Equal(t, tc.success, *st.Result.Success, "watched=%v", tc.watched)
		require.NotNil(t, st.Result.Completion)
		assert.True(t, *st.Result.Completion)
	}
}

func TestBuildCompletedScore(t *testing.T) {
	st := testBuilder().BuildCompleted(100, 120, 0.9)

	require.NotNil(t, st.Result.Score)
	assert.Equal(t, 0.9, st.Result.Score.Scaled)
	assert.InDelta(t, 90.0, st.Result.Score.Raw, 1e-9)
	assert.Equal(t, 0.0, st.Result.Score.Min)
	assert.Equal(t, 100.0, st.Result.Score.Max)
	assert.Equal(t, 0.9, st.Result.Extensions[ExtProgress])
}

func TestBuildBookmarkResponse(t *testing.T) {
	st := testBuilder().BuildBookmark(42, "Key moment", "gear ratios explained", 120)
	assert.Equal(t, "Key moment: gear ratios explained", st.Result.Response)
	assert.Equal(t, VerbBookmarked, st.Verb.ID)

	st = testBuilder().BuildBookmark(42, "Key moment", "", 120)
	assert.Equal(t, "Key moment", st.Result.Response)
}

func TestBuildExperiencedHasNoResult(t *testing.T) {
	st := testBuilder().BuildExperienced()
	assert.Equal(t, VerbExperienced, st.Verb.ID)
	assert.Nil(t, st.Result)
}

func TestActorWithEmailUsesMbox(t *testing.T) {
	actor := NewActor(Principal{Email: "a@b.com", Username: "ab"}, "https://lms.example.com")

	assert.Equal(t, "mailto:a@b.com", actor.Mbox)
	assert.Nil(t, actor.Account)
	assert.Equal(t, "Agent", actor.ObjectType)
}

func TestActorWithoutEmailFallsBackToAccount(t *testing.T) {
	actor := NewActor(Principal{Username: "learner42"}, "https://lms.example.com")

	assert.Empty(t, actor.Mbox)
	require.NotNil(t, actor.Account)
	assert.Equal(t, "https://lms.example.com", actor.Account.HomePage)
	assert.Equal(t, "learner42", actor.Account.Name)
}

func TestActorDisplayName(t *testing.T) {
	actor := NewActor(Principal{Email: "a@b.com", FirstName: "Ada", LastName: "Lovelace"}, "")
	assert.Equal(t, "Ada Lovelace", actor.Name)

	actor = NewActor(Principal{Email: "a@b.com", FirstName: "Ada"}, "")
	assert.Equal(t, "Ada", actor.Name)

	actor = NewActor(Principal{Email: "a@b.com"}, "")
	assert.Empty(t, actor.Name)
}

func TestObjectIdentityAndDefinition(t *testing.T) {
	st := testBuilder().BuildPlay(0, 10)

	assert.Equal(t, "https://lms.example.com/videos/7", st.Object.ID)
	assert.Equal(t, "Activity", st.Object.ObjectType)
	require.NotNil(t, st.Object.Definition)
	assert.Equal(t, ActivityTypeVideo, st.Object.Definition.Type)
	assert.Equal(t, "Intro to Gears", st.Object.Definition.Name["en-US"])
	assert.Equal(t, "A short intro.", st.Object.Definition.Description["en-US"])
	assert.Equal(t, "https://cdn.example.com/gears.mp4", st.Object.Definition.MoreInfo)
}

func TestContextParentCourse(t *testing.T) {
	st := testBuilder().BuildPlay(0, 10)

	require.NotNil(t, st.Context)
	assert.Equal(t, "TestLMS", st.Context.Platform)
	require.Len(t, st.Context.ContextActivities.Parent, 1)
	parent := st.Context.ContextActivities.Parent[0]
	assert.Equal(t, "https://lms.example.com/courses/3", parent.ID)
	assert.Equal(t, ActivityTypeCourse, parent.Definition.Type)
	assert.Nil(t, st.Context.Instructor)
}

func TestContextInstructorAttached(t *testing.T) {
	instructor := NewActor(Principal{Email: "prof@example.com", FirstName: "Grace"}, "")
	b := testBuilder().WithInstructor(instructor)
	st := b.BuildPlay(0, 10)

	require.NotNil(t, st.Context.Instructor)
	assert.Equal(t, "mailto:prof@example.com", st.Context.Instructor.Mbox)
}

func TestBuildDispatchesAllEventVariants(t *testing.T) {
	b := testBuilder()

	cases := []struct {
		ev   Event
		verb string
	}{
		{PlayEvent{Time: 1, Length: 10}, VerbPlayed},
		{PauseEvent{Time: 1, Length: 10}, VerbPaused},
		{SeekEvent{TimeFrom: 1, TimeTo: 5, Length: 10}, VerbSeeked},
		{CompleteEvent{Time: 10, Length: 10, WatchedPercentage: 1}, VerbCompleted},
		{BookmarkEvent{Time: 3, Length: 10, Title: "t"}, VerbBookmarked},
		{ExperienceEvent{}, VerbExperienced},
	}

	for _, tc := range cases {
		st := b.Build(tc.ev)
		assert.Equal(t, tc.verb, st.Verb.ID)
	}
}

func TestStatementSerializesOmittingEmptyFields(t *testing.T) {
	st := testBuilder().BuildExperienced()

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "result")
	assert.Contains(t, decoded, "actor")
	assert.Contains(t, decoded, "verb")
	assert.Contains(t, decoded, "object")
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "plain", stripMarkup("plain"))
	assert.Equal(t, "bold text", stripMarkup("<b>bold</b> text"))
	assert.Equal(t, "", stripMarkup("<br/>"))
}
