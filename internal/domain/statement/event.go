// internal/domain/statement/event.go
package statement

// Event is the closed set of learning interactions the builder can turn into
// a statement. Each variant carries its own typed payload; dispatch is an
// exhaustive type switch in Builder.Build, so there is no "unknown verb"
// runtime path.
type Event interface {
	isEvent()
}

// PlayEvent records that playback started at Time.
type PlayEvent struct {
	Time   float64
	Length float64
}

// PauseEvent records that playback paused at Time.
type PauseEvent struct {
	Time   float64
	Length float64
}

// SeekEvent records a jump from TimeFrom to TimeTo.
type SeekEvent struct {
	TimeFrom float64
	TimeTo   float64
	Length   float64
}

// CompleteEvent records that the viewer finished the video having watched
// WatchedPercentage of it (0..1).
type CompleteEvent struct {
	Time              float64
	Length            float64
	WatchedPercentage float64
}

// BookmarkEvent records a viewer-created bookmark at Time.
type BookmarkEvent struct {
	Time        float64
	Length      float64
	Title       string
	Description string
}

// ExperienceEvent records a generic "viewed the activity" interaction.
type ExperienceEvent struct{}

func (PlayEvent) isEvent()       {}
func (PauseEvent) isEvent()      {}
func (SeekEvent) isEvent()       {}
func (CompleteEvent) isEvent()   {}
func (BookmarkEvent) isEvent()   {}
func (ExperienceEvent) isEvent() {}
