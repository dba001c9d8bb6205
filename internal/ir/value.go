package ir

import (
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface representing the value types that may appear
// in canonical JSON. There is no float variant.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// StringArray converts a string slice to an IRArray.
func StringArray(ss []string) IRArray {
	arr := make(IRArray, len(ss))
	for i, s := range ss {
		arr[i] = IRString(s)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs for astral runes.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// ToIR converts the table to an IRObject for canonical serialization.
func (t *SceneTable) ToIR() IRObject {
	prompts := make(IRArray, len(t.Prompts))
	for i, p := range t.Prompts {
		prompts[i] = IRObject{
			"horizon": IRString(p.Horizon),
			"text":    IRString(p.Text),
		}
	}

	colors := make(IRArray, len(t.Colors))
	for i, c := range t.Colors {
		colors[i] = IRString(c)
	}

	scenes := make(IRArray, len(t.Scenes))
	for i, s := range t.Scenes {
		scenes[i] = s.ToIR()
	}

	obj := IRObject{
		"name":       IRString(t.Name),
		"prompts":    prompts,
		"choices":    StringArray(t.Choices),
		"colors":     colors,
		"scenes":     scenes,
		"ir_version": IRString(IRVersion),
	}
	if t.HIT != nil {
		obj["hit"] = t.HIT.ToIR()
	}
	return obj
}

// ToIR converts a scene to an IRObject.
func (s Scene) ToIR() IRObject {
	objects := make(IRArray, len(s.Objects))
	for i, o := range s.Objects {
		objects[i] = IRObject{
			"color":         IRString(o.Color),
			"label":         IRString(o.Label),
			"change_target": IRBool(o.ChangeTarget),
		}
	}
	return IRObject{
		"image":   IRString(s.Image),
		"objects": objects,
	}
}

// ToIR converts a HIT spec to an IRObject.
func (h *HITSpec) ToIR() IRObject {
	quals := make(IRArray, len(h.Qualifications))
	for i, q := range h.Qualifications {
		qo := IRObject{
			"kind":       IRString(q.Kind),
			"comparator": IRString(q.Comparator),
		}
		if q.Locale != "" {
			qo["locale"] = IRString(q.Locale)
		} else {
			qo["value"] = IRInt(q.Value)
		}
		quals[i] = qo
	}
	return IRObject{
		"title":               IRString(h.Title),
		"description":         IRString(h.Description),
		"keywords":            StringArray(h.Keywords),
		"experiment_url":      IRString(h.ExperimentURL),
		"frame_height":        IRInt(h.FrameHeight),
		"max_assignments":     IRInt(h.MaxAssignments),
		"lifetime":            IRString(h.Lifetime),
		"assignment_duration": IRString(h.AssignmentDuration),
		"auto_approval_delay": IRString(h.AutoApprovalDelay),
		"reward_cents":        IRInt(h.RewardCents),
		"sandbox":             IRBool(h.Sandbox),
		"qualifications":      quals,
	}
}
