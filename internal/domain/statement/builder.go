// internal/domain/statement/builder.go
package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// successThreshold is the watched fraction above which a completed statement
// counts as successful.
const successThreshold = 0.8

// Principal is the acting user as supplied by the host application.
type Principal struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// Video is the video activity a statement is about.
type Video struct {
	ID          int64
	Name        string
	Description string
	URL         string // direct media URL, optional
}

// Course is the enclosing course of the video activity.
type Course struct {
	ID   int64
	Name string
}

// Builder produces xAPI statements for one (user, video, course) context.
// It performs no I/O; the instructor actor, if any, is resolved by the
// caller and passed in up front.
type Builder struct {
	user       Principal
	video      Video
	course     Course
	baseURL    string
	platform   string
	instructor *Actor
	now        func() time.Time
}

func NewBuilder(user Principal, video Video, course Course, baseURL, platform string) *Builder {
	return &Builder{
		user:     user,
		video:    video,
		course:   course,
		baseURL:  strings.TrimRight(baseURL, "/"),
		platform: platform,
		now:      time.Now,
	}
}

// WithInstructor attaches an instructor actor to the statement context.
// Instructor resolution is best-effort; a nil actor is simply omitted.
func (b *Builder) WithInstructor(instructor *Actor) *Builder {
	b.instructor = instructor
	return b
}

// Build dispatches on the event variant. The switch is exhaustive over the
// Event union.
func (b *Builder) Build(ev Event) *Statement {
	switch e := ev.(type) {
	case PlayEvent:
		return b.BuildPlay(e.Time, e.Length)
	case PauseEvent:
		return b.BuildPause(e.Time, e.Length)
	case SeekEvent:
		return b.BuildSeek(e.TimeFrom, e.TimeTo, e.Length)
	case CompleteEvent:
		return b.BuildCompleted(e.Time, e.Length, e.WatchedPercentage)
	case BookmarkEvent:
		return b.BuildBookmark(e.Time, e.Title, e.Description, e.Length)
	case ExperienceEvent:
		return b.BuildExperienced()
	default:
		// Event is a closed set; this is unreachable for values built
		// through this package.
		panic(fmt.Sprintf("statement: unhandled event type %T", ev))
	}
}

// BuildPlay builds a statement for playback starting at time seconds.
func (b *Builder) BuildPlay(time, length float64) *Statement {
	st := b.base(VerbPlayed, "played")
	st.Result = &Result{Extensions: timeExtensions(time, length)}
	return st
}

// BuildPause builds a statement for playback pausing at time seconds.
func (b *Builder) BuildPause(time, length float64) *Statement {
	st := b.base(VerbPaused, "paused")
	st.Result = &Result{Extensions: timeExtensions(time, length)}
	return st
}

// BuildSeek builds a statement for a seek from timeFrom to timeTo.
// Progress is computed from the landing position.
func (b *Builder) BuildSeek(timeFrom, timeTo, length float64) *Statement {
	st := b.base(VerbSeeked, "seeked")
	st.Result = &Result{Extensions: Extensions{
		ExtTimeFrom: timeFrom,
		ExtTimeTo:   timeTo,
		ExtLength:   length,
		ExtProgress: progress(timeTo, length),
	}}
	return st
}

// BuildCompleted builds a statement for the viewer finishing the video.
// Success requires at least 80% of the video watched.
func (b *Builder) BuildCompleted(time, length, watchedPercentage float64) *Statement {
	completion := true
	success := watchedPercentage >= successThreshold

	st := b.base(VerbCompleted, "completed")
	st.Result = &Result{
		Completion: &completion,
		Success:    &success,
		Score: &Score{
			Scaled: watchedPercentage,
			Raw:    watchedPercentage * 100,
			Min:    0,
			Max:    100,
		},
		Extensions: Extensions{
			ExtTime:     time,
			ExtLength:   length,
			ExtProgress: watchedPercentage,
		},
	}
	return st
}

// BuildBookmark builds a statement for a viewer-created bookmark. The
// response string is the title, with the description appended when present.
func (b *Builder) BuildBookmark(time float64, title, description string, length float64) *Statement {
	response := title
	if description != "" {
		response = title + ": " + description
	}

	st := b.base(VerbBookmarked, "bookmarked")
	st.Result = &Result{
		Response:   response,
		Extensions: timeExtensions(time, length),
	}
	return st
}

// BuildExperienced builds a generic "experienced the activity" statement.
func (b *Builder) BuildExperienced() *Statement {
	return b.base(VerbExperienced, "experienced")
}

func (b *Builder) base(verbIRI, label string) *Statement {
	return &Statement{
		ID:        uuid.NewString(),
		Version:   XAPIVersion,
		Timestamp: b.now().Format(time.RFC3339),
		Actor:     NewActor(b.user, b.baseURL),
		Verb: &Verb{
			ID:      verbIRI,
			Display: LanguageMap{"en-US": label},
		},
		Object:  b.buildObject(),
		Context: b.buildContext(),
	}
}

// NewActor builds an xAPI agent for a principal. A principal with an email
// gets a mailbox IRI identity; otherwise the identity falls back to an
// account keyed by username and the deployment base URL, since xAPI requires
// exactly one inverse-functional identifier and the host does not guarantee
// email presence.
func NewActor(p Principal, baseURL string) *Actor {
	actor := &Actor{ObjectType: objectTypeAgent}

	if p.Email != "" {
		actor.Mbox = "mailto:" + p.Email
	} else {
		actor.Account = &Account{
			HomePage: baseURL,
			Name:     p.Username,
		}
	}

	if p.FirstName != "" || p.LastName != "" {
		actor.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	return actor
}

func (b *Builder) buildObject() *Object {
	def := &Definition{
		Name: LanguageMap{"en-US": b.video.Name},
		Type: ActivityTypeVideo,
	}
	if b.video.Description != "" {
		def.Description = LanguageMap{"en-US": stripMarkup(b.video.Description)}
	}
	if b.video.URL != "" {
		def.MoreInfo = b.video.URL
	}

	return &Object{
		ObjectType: objectTypeActivity,
		ID:         fmt.Sprintf("%s/videos/%d", b.baseURL, b.video.ID),
		Definition: def,
	}
}

func (b *Builder) buildContext() *Context {
	return &Context{
		Platform: b.platform,
		Language: "en-US",
		ContextActivities: &ContextActivities{
			Parent: []*Object{
				{
					ObjectType: objectTypeActivity,
					ID:         fmt.Sprintf("%s/courses/%d", b.baseURL, b.course.ID),
					Definition: &Definition{
						Name: LanguageMap{"en-US": b.course.Name},
						Type: ActivityTypeCourse,
					},
				},
			},
		},
		Instructor: b.instructor,
	}
}

func timeExtensions(time, length float64) Extensions {
	return Extensions{
		ExtTime:     time,
		ExtLength:   length,
		ExtProgress: progress(time, length),
	}
}

func progress(time, length float64) float64 {
	if length > 0 {
		return time / length
	}
	return 0
}

// stripMarkup drops anything between < and > so descriptions coming from
// rich-text editors go out as plain text.
func stripMarkup(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(out.String())
}
