package compiler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/roach88/changeprob/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// SceneTable errors (E120-E129)
	ErrPromptCount      = "E120" // exactly three prompts
	ErrPromptHorizon    = "E121" // horizons distinct, increasing; texts distinct
	ErrChoiceScale      = "E122" // choices are "1".."10"
	ErrColorSlots       = "E123" // colors are red, orange, yellow, green, blue
	ErrSceneImage       = "E124" // at least one scene, unique image names
	ErrObjectCount      = "E125" // one object per color slot
	ErrObjectAlignment  = "E126" // object color matches its slot
	ErrChangeTarget     = "E127" // exactly one change target per scene
	ErrObjectLabel      = "E128" // non-empty label without the change marker
	ErrTableNameMissing = "E129" // table name required, single line

	// HITSpec errors (E130-E139)
	ErrHITRequired      = "E130" // title, description, URL required
	ErrHITCount         = "E131" // positive assignments and frame height
	ErrHITDuration      = "E132" // durations parse and are positive
	ErrHITReward        = "E133" // reward must be positive
	ErrHITQualification = "E134" // known kind and comparator
)

// CreateHIT duration limits.
const (
	MinHITLifetime        = 30 * time.Second
	MaxHITLifetime        = 365 * 24 * time.Hour
	MinAssignmentDuration = 30 * time.Second
	MaxAssignmentDuration = 365 * 24 * time.Hour
	MaxAutoApprovalDelay  = 30 * 24 * time.Hour
)

// imageExtensions are the formats the harness asset pipeline can load.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against the table invariants.
// Returns all errors found (does not fail-fast).
// Supports SceneTable and HITSpec types.
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *ir.SceneTable:
		return validateSceneTable(val)
	case ir.SceneTable:
		return validateSceneTable(&val)
	case *ir.HITSpec:
		return validateHIT(val, "hit")
	case ir.HITSpec:
		return validateHIT(&val, "hit")
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateSceneTable validates a scene table.
func validateSceneTable(t *ir.SceneTable) []ValidationError {
	var errs []ValidationError

	// E129: name is required and must fit on one line; exporters write it
	// into comment headers.
	switch {
	case strings.TrimSpace(t.Name) == "":
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "table name is required and must be non-empty",
			Code:    ErrTableNameMissing,
		})
	case strings.IndexFunc(t.Name, isLineBreakOrControl) >= 0:
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("table name %q must not contain line breaks or control characters", t.Name),
			Code:    ErrTableNameMissing,
		})
	}

	errs = append(errs, validatePrompts(t.Prompts)...)
	errs = append(errs, validateChoices(t.Choices)...)
	errs = append(errs, validateColors(t.Colors)...)
	errs = append(errs, validateScenes(t)...)

	if t.HIT != nil {
		errs = append(errs, validateHIT(t.HIT, "hit")...)
	}

	return errs
}

// isLineBreakOrControl reports control characters and the JS line
// terminators U+2028 and U+2029.
func isLineBreakOrControl(r rune) bool {
	return unicode.IsControl(r) || r == '\u2028' || r == '\u2029'
}

// validatePrompts checks count, horizon ordering and text uniqueness.
func validatePrompts(prompts []ir.Prompt) []ValidationError {
	var errs []ValidationError

	// E120: exactly three prompts
	if len(prompts) != ir.PromptCount {
		errs = append(errs, ValidationError{
			Field:   "prompts",
			Message: fmt.Sprintf("expected %d prompts, got %d", ir.PromptCount, len(prompts)),
			Code:    ErrPromptCount,
		})
	}

	var prev time.Duration
	texts := make(map[string]bool)
	for i, p := range prompts {
		field := fmt.Sprintf("prompts[%d]", i)

		// E121: horizon must parse, be positive and strictly increase
		d, err := time.ParseDuration(p.Horizon)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Field:   field + ".horizon",
				Message: fmt.Sprintf("invalid horizon %q: must be a duration such as \"5m\" or \"24h\"", p.Horizon),
				Code:    ErrPromptHorizon,
			})
		case d <= 0:
			errs = append(errs, ValidationError{
				Field:   field + ".horizon",
				Message: fmt.Sprintf("horizon %q must be positive", p.Horizon),
				Code:    ErrPromptHorizon,
			})
		case d <= prev:
			errs = append(errs, ValidationError{
				Field:   field + ".horizon",
				Message: fmt.Sprintf("horizon %q must be longer than the previous prompt's", p.Horizon),
				Code:    ErrPromptHorizon,
			})
		}
		if err == nil && d > prev {
			prev = d
		}

		// E121: distinct non-empty texts
		if strings.TrimSpace(p.Text) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".text",
				Message: "prompt text is required",
				Code:    ErrPromptHorizon,
			})
		} else if texts[p.Text] {
			errs = append(errs, ValidationError{
				Field:   field + ".text",
				Message: fmt.Sprintf("duplicate prompt text: %q", p.Text),
				Code:    ErrPromptHorizon,
			})
		}
		texts[p.Text] = true
	}

	return errs
}

// validateChoices checks the Likert scale is exactly "1".."10".
func validateChoices(choices []string) []ValidationError {
	// E122
	if len(choices) != len(ir.CanonicalChoices) {
		return []ValidationError{{
			Field:   "choices",
			Message: fmt.Sprintf("expected %d choices, got %d", len(ir.CanonicalChoices), len(choices)),
			Code:    ErrChoiceScale,
		}}
	}

	var errs []ValidationError
	for i, c := range choices {
		if c != ir.CanonicalChoices[i] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("choices[%d]", i),
				Message: fmt.Sprintf("expected %q, got %q", ir.CanonicalChoices[i], c),
				Code:    ErrChoiceScale,
			})
		}
	}
	return errs
}

// validateColors checks the canonical slot order.
func validateColors(colors []ir.ColorSlot) []ValidationError {
	// E123
	if len(colors) != len(ir.CanonicalColorSlots) {
		return []ValidationError{{
			Field:   "colors",
			Message: fmt.Sprintf("expected %d color slots, got %d", len(ir.CanonicalColorSlots), len(colors)),
			Code:    ErrColorSlots,
		}}
	}

	var errs []ValidationError
	for i, c := range colors {
		if c != ir.CanonicalColorSlots[i] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("colors[%d]", i),
				Message: fmt.Sprintf("slot %d must be %q, got %q", i, ir.CanonicalColorSlots[i], c),
				Code:    ErrColorSlots,
			})
		}
	}
	return errs
}

// validateScenes checks images, per-scene object records and change targets.
func validateScenes(t *ir.SceneTable) []ValidationError {
	var errs []ValidationError

	// E124: at least one scene
	if len(t.Scenes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "scenes",
			Message: "at least one scene is required",
			Code:    ErrSceneImage,
		})
	}

	images := make(map[string]bool)
	for i, s := range t.Scenes {
		field := fmt.Sprintf("scenes[%d]", i)

		// E124: image name
		switch {
		case strings.TrimSpace(s.Image) == "":
			errs = append(errs, ValidationError{
				Field:   field + ".image",
				Message: "scene image is required",
				Code:    ErrSceneImage,
			})
		case images[s.Image]:
			errs = append(errs, ValidationError{
				Field:   field + ".image",
				Message: fmt.Sprintf("duplicate scene image: %q", s.Image),
				Code:    ErrSceneImage,
			})
		case !imageExtensions[strings.ToLower(path.Ext(s.Image))]:
			errs = append(errs, ValidationError{
				Field:   field + ".image",
				Message: fmt.Sprintf("scene image %q has no supported image extension", s.Image),
				Code:    ErrSceneImage,
			})
		}
		images[s.Image] = true

		// E125: one object per color slot
		if len(s.Objects) != len(t.Colors) {
			errs = append(errs, ValidationError{
				Field:   field + ".objects",
				Message: fmt.Sprintf("scene %q has %d objects, expected %d (one per color slot)", s.Image, len(s.Objects), len(t.Colors)),
				Code:    ErrObjectCount,
			})
		}

		for j, o := range s.Objects {
			objField := fmt.Sprintf("%s.objects[%d]", field, j)

			// E126: slot alignment
			if j < len(t.Colors) && o.Color != t.Colors[j] {
				errs = append(errs, ValidationError{
					Field:   objField + ".color",
					Message: fmt.Sprintf("object %q is in slot %d (%s) but labelled %q", o.Label, j, t.Colors[j], o.Color),
					Code:    ErrObjectAlignment,
				})
			}

			// E128: label
			if strings.TrimSpace(o.Label) == "" {
				errs = append(errs, ValidationError{
					Field:   objField + ".label",
					Message: "object label is required",
					Code:    ErrObjectLabel,
				})
			} else if strings.Contains(o.Label, ir.ChangeMarker) {
				errs = append(errs, ValidationError{
					Field:   objField + ".label",
					Message: fmt.Sprintf("label %q must not contain %q; mark the change target explicitly", o.Label, ir.ChangeMarker),
					Code:    ErrObjectLabel,
				})
			}
		}

		// E127: exactly one change target
		if n := len(s.ChangeTargets()); n != 1 {
			errs = append(errs, ValidationError{
				Field:   field + ".objects",
				Message: fmt.Sprintf("scene %q has %d change targets, expected exactly 1", s.Image, n),
				Code:    ErrChangeTarget,
			})
		}
	}

	return errs
}

// validateHIT validates crowd-sourcing settings.
func validateHIT(h *ir.HITSpec, prefix string) []ValidationError {
	var errs []ValidationError

	// E130: required text fields
	required := []struct {
		field string
		value string
	}{
		{"title", h.Title},
		{"description", h.Description},
		{"experiment_url", h.ExperimentURL},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + "." + r.field,
				Message: fmt.Sprintf("%s is required", r.field),
				Code:    ErrHITRequired,
			})
		}
	}
	if h.ExperimentURL != "" {
		if u, err := url.Parse(h.ExperimentURL); err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".experiment_url",
				Message: fmt.Sprintf("experiment URL %q must be an absolute https URL", h.ExperimentURL),
				Code:    ErrHITRequired,
			})
		}
	}

	// E131: counts
	if h.MaxAssignments <= 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".max_assignments",
			Message: "max_assignments must be positive",
			Code:    ErrHITCount,
		})
	}
	if h.FrameHeight <= 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".frame_height",
			Message: "frame_height must be positive",
			Code:    ErrHITCount,
		})
	}

	// E132: durations, in whole seconds within the CreateHIT limits
	durations := []struct {
		field    string
		value    string
		min, max time.Duration
	}{
		{"lifetime", h.Lifetime, MinHITLifetime, MaxHITLifetime},
		{"assignment_duration", h.AssignmentDuration, MinAssignmentDuration, MaxAssignmentDuration},
		{"auto_approval_delay", h.AutoApprovalDelay, 0, MaxAutoApprovalDelay},
	}
	for _, d := range durations {
		field := prefix + "." + d.field
		dur, err := time.ParseDuration(d.value)
		var msg string
		switch {
		case err != nil:
			msg = fmt.Sprintf("%s %q is not a duration", d.field, d.value)
		case dur%time.Second != 0:
			msg = fmt.Sprintf("%s %q must be a whole number of seconds", d.field, d.value)
		case dur < d.min || dur > d.max:
			msg = fmt.Sprintf("%s %q must be between %s and %s", d.field, d.value, d.min, d.max)
		default:
			continue
		}
		errs = append(errs, ValidationError{Field: field, Message: msg, Code: ErrHITDuration})
	}

	// E133: reward
	if h.RewardCents <= 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".reward_cents",
			Message: "reward_cents must be positive",
			Code:    ErrHITReward,
		})
	}

	// E134: qualifications
	for i, q := range h.Qualifications {
		field := fmt.Sprintf("%s.qualifications[%d]", prefix, i)
		comparators := ir.ValidComparators
		switch q.Kind {
		case ir.QualPercentApproved:
			if q.Value < 0 || q.Value > 100 {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: fmt.Sprintf("percent %d out of range 0..100", q.Value),
					Code:    ErrHITQualification,
				})
			}
		case ir.QualHITsApproved:
			if q.Value < 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: "approved HIT count must be non-negative",
					Code:    ErrHITQualification,
				})
			}
		case ir.QualLocale:
			comparators = ir.LocaleComparators
			if !isCountryCode(q.Locale) {
				errs = append(errs, ValidationError{
					Field:   field + ".locale",
					Message: fmt.Sprintf("locale %q must be an ISO 3166 alpha-2 country code", q.Locale),
					Code:    ErrHITQualification,
				})
			}
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown qualification kind %q", q.Kind),
				Code:    ErrHITQualification,
			})
			continue
		}
		if !comparators[q.Comparator] {
			errs = append(errs, ValidationError{
				Field:   field + ".comparator",
				Message: fmt.Sprintf("comparator %q not allowed for %s", q.Comparator, q.Kind),
				Code:    ErrHITQualification,
			})
		}
	}

	return errs
}

// isCountryCode reports two upper-case ASCII letters.
func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
