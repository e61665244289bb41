// internal/domain/statement/statement.go
package statement

// Statement is a single xAPI 1.0.3 statement. Statements are built once by
// the Builder and never mutated afterwards; the delivery layer only
// serializes them.
type Statement struct {
	ID        string   `json:"id,omitempty"`
	Version   string   `json:"version"`
	Timestamp string   `json:"timestamp"`
	Actor     *Actor   `json:"actor"`
	Verb      *Verb    `json:"verb"`
	Object    *Object  `json:"object"`
	Result    *Result  `json:"result,omitempty"`
	Context   *Context `json:"context,omitempty"`
}

// LanguageMap maps an RFC 5646 language tag to a display string.
type LanguageMap map[string]string

// Extensions maps an extension IRI to a numeric value.
type Extensions map[string]float64

// Actor identifies who performed the action. xAPI requires exactly one
// inverse-functional identifier, so either Mbox or Account is set, never both.
type Actor struct {
	ObjectType string   `json:"objectType"`
	Name       string   `json:"name,omitempty"`
	Mbox       string   `json:"mbox,omitempty"`
	Account    *Account `json:"account,omitempty"`
}

// Account is the fallback actor identity for principals without an email.
type Account struct {
	HomePage string `json:"homePage"`
	Name     string `json:"name"`
}

// Verb carries the verb IRI and its localized display label.
type Verb struct {
	ID      string      `json:"id"`
	Display LanguageMap `json:"display"`
}

// Object is the activity the statement is about.
type Object struct {
	ObjectType string      `json:"objectType"`
	ID         string      `json:"id"`
	Definition *Definition `json:"definition,omitempty"`
}

// Definition describes an activity.
type Definition struct {
	Name        LanguageMap `json:"name,omitempty"`
	Description LanguageMap `json:"description,omitempty"`
	Type        string      `json:"type,omitempty"`
	MoreInfo    string      `json:"moreInfo,omitempty"`
}

// Result holds the verb-specific outcome of a statement.
type Result struct {
	Completion *bool      `json:"completion,omitempty"`
	Success    *bool      `json:"success,omitempty"`
	Response   string     `json:"response,omitempty"`
	Score      *Score     `json:"score,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`
}

// Score follows the xAPI score object shape.
type Score struct {
	Scaled float64 `json:"scaled"`
	Raw    float64 `json:"raw"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Context relates the statement to its enclosing course and instructor.
type Context struct {
	Platform          string             `json:"platform,omitempty"`
	Language          string             `json:"language,omitempty"`
	ContextActivities *ContextActivities `json:"contextActivities,omitempty"`
	Instructor        *Actor             `json:"instructor,omitempty"`
}

// ContextActivities carries the parent-activity reference to the course.
type ContextActivities struct {
	Parent []*Object `json:"parent"`
}

const (
	// XAPIVersion is the xAPI specification version every statement declares.
	XAPIVersion = "1.0.3"

	objectTypeAgent    = "Agent"
	objectTypeActivity = "Activity"
)

// Verb IRIs from the xAPI video and ADB profiles.
const (
	VerbPlayed      = "https://w3id.org/xapi/video/verbs/played"
	VerbPaused      = "https://w3id.org/xapi/video/verbs/paused"
	VerbSeeked      = "https://w3id.org/xapi/video/verbs/seeked"
	VerbCompleted   = "http://adlnet.gov/expapi/verbs/completed"
	VerbBookmarked  = "https://w3id.org/xapi/adb/verbs/bookmarked"
	VerbExperienced = "http://adlnet.gov/expapi/verbs/experienced"
)

// Result extension IRIs from the xAPI video profile.
const (
	ExtLength   = "https://w3id.org/xapi/video/extensions/length"
	ExtProgress = "https://w3id.org/xapi/video/extensions/progress"
	ExtTime     = "https://w3id.org/xapi/video/extensions/time"
	ExtTimeFrom = "https://w3id.org/xapi/video/extensions/time-from"
	ExtTimeTo   = "https://w3id.org/xapi/video/extensions/time-to"
)

// Activity type IRIs.
const (
	ActivityTypeVideo  = "https://w3id.org/xapi/video/activity-type/video"
	ActivityTypeCourse = "http://adlnet.gov/expapi/activities/course"
)
