package ir

// ColorSlot names one of the five highlight colors used to bind an object
// label to a boxed region of a scene image.
type ColorSlot string

// Canonical color slots, in slot order.
const (
	ColorRed    ColorSlot = "red"
	ColorOrange ColorSlot = "orange"
	ColorYellow ColorSlot = "yellow"
	ColorGreen  ColorSlot = "green"
	ColorBlue   ColorSlot = "blue"
)

// CanonicalColorSlots is the fixed slot order: 0=red ... 4=blue.
var CanonicalColorSlots = []ColorSlot{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue}

// CanonicalChoices is the 1..10 Likert scale. Position is the scale value minus one.
var CanonicalChoices = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

// PromptCount is the number of time horizons asked about per object.
const PromptCount = 3

// ChangeMarker is the suffix the browser harness uses to recognise the change
// target in a label list. It only appears at the legacy boundary.
const ChangeMarker = "_CHANGE"

// IsValid reports whether c is one of the canonical color slots.
func (c ColorSlot) IsValid() bool {
	for _, s := range CanonicalColorSlots {
		if s == c {
			return true
		}
	}
	return false
}

// SceneTable is a compiled scene configuration.
type SceneTable struct {
	Name    string      `json:"name"`
	Prompts []Prompt    `json:"prompts"`
	Choices []string    `json:"choices"`
	Colors  []ColorSlot `json:"colors"`
	Scenes  []Scene     `json:"scenes"`
	HIT     *HITSpec    `json:"hit,omitempty"` // Optional crowd-sourcing settings
}

// Prompt is a likelihood question for one time horizon.
type Prompt struct {
	Horizon string `json:"horizon"` // Go duration string, e.g. "5m", "1h", "24h"
	Text    string `json:"text"`    // Display text, HTML fragment kept verbatim
}

// Scene is one trial stimulus and its labelled objects.
type Scene struct {
	Image   string        `json:"image"`
	Objects []ObjectLabel `json:"objects"`
}

// ObjectLabel binds a label to a color slot within a scene.
type ObjectLabel struct {
	Color        ColorSlot `json:"color"`
	Label        string    `json:"label"`
	ChangeTarget bool      `json:"change_target"`
}

// DisplayLabel returns the label as the browser harness expects it, with
// ChangeMarker appended for the change target.
func (o ObjectLabel) DisplayLabel() string {
	if o.ChangeTarget {
		return o.Label + ChangeMarker
	}
	return o.Label
}

// ChangeTargets returns the indexes of objects marked as change targets.
func (s Scene) ChangeTargets() []int {
	var idx []int
	for i, o := range s.Objects {
		if o.ChangeTarget {
			idx = append(idx, i)
		}
	}
	return idx
}

// HITSpec describes a crowd-sourcing task that points workers at the
// experiment page. Durations are Go duration strings; money is integer cents.
type HITSpec struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Keywords           []string        `json:"keywords"`
	ExperimentURL      string          `json:"experiment_url"`
	FrameHeight        int64           `json:"frame_height"`
	MaxAssignments     int64           `json:"max_assignments"`
	Lifetime           string          `json:"lifetime"`
	AssignmentDuration string          `json:"assignment_duration"`
	AutoApprovalDelay  string          `json:"auto_approval_delay"`
	RewardCents        int64           `json:"reward_cents"`
	Sandbox            bool            `json:"sandbox"`
	Qualifications     []Qualification `json:"qualifications"`
}

// Qualification is a worker requirement attached to a HIT.
type Qualification struct {
	Kind       string `json:"kind"`       // "percent_approved", "hits_approved", "locale"
	Comparator string `json:"comparator"` // "GreaterThanOrEqualTo", "EqualTo", ...
	Value      int64  `json:"value,omitempty"`
	Locale     string `json:"locale,omitempty"`
}

// Valid qualification kinds.
const (
	QualPercentApproved = "percent_approved"
	QualHITsApproved    = "hits_approved"
	QualLocale          = "locale"
)

// ValidComparators lists the comparators accepted for numeric qualifications.
var ValidComparators = map[string]bool{
	"LessThan":             true,
	"LessThanOrEqualTo":    true,
	"GreaterThan":          true,
	"GreaterThanOrEqualTo": true,
	"EqualTo":              true,
	"NotEqualTo":           true,
}

// LocaleComparators lists the comparators MTurk accepts for a locale
// qualification with a single country.
var LocaleComparators = map[string]bool{
	"EqualTo":    true,
	"NotEqualTo": true,
}

// Clone returns a deep copy of the table.
func (t *SceneTable) Clone() *SceneTable {
	if t == nil {
		return nil
	}
	out := &SceneTable{
		Name:    t.Name,
		Prompts: append([]Prompt(nil), t.Prompts...),
		Choices: append([]string(nil), t.Choices...),
		Colors:  append([]ColorSlot(nil), t.Colors...),
		Scenes:  make([]Scene, len(t.Scenes)),
	}
	for i, s := range t.Scenes {
		out.Scenes[i] = Scene{
			Image:   s.Image,
			Objects: append([]ObjectLabel(nil), s.Objects...),
		}
	}
	if t.HIT != nil {
		hit := *t.HIT
		hit.Keywords = append([]string(nil), t.HIT.Keywords...)
		hit.Qualifications = append([]Qualification(nil), t.HIT.Qualifications...)
		out.HIT = &hit
	}
	return out
}
