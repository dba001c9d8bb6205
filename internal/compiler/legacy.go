package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/changeprob/internal/ir"
)

// LegacyTable is the parallel-array layout the browser harness imports.
// Position i of AllScenes pairs with position i of AllObjects, and position j
// of each object set pairs with ObjectColors[j].
type LegacyTable struct {
	Name          string     `json:"name,omitempty" yaml:"name,omitempty"`
	ChangePrompts []string   `json:"change_prompts" yaml:"change_prompts"`
	ChangeChoices []string   `json:"change_choices" yaml:"change_choices"`
	AllScenes     []string   `json:"all_scenes" yaml:"all_scenes"`
	ObjectColors  []string   `json:"object_colors" yaml:"object_colors"`
	AllObjects    [][]string `json:"all_objects" yaml:"all_objects"`
}

// DefaultLegacyName names tables imported without an explicit name.
const DefaultLegacyName = "legacy_scenes"

// ImportLegacy converts a parallel-array table into records.
//
// Labels ending in ir.ChangeMarker become change targets with the marker
// stripped. Prompt horizons are read from the "in N minutes|hours|days"
// phrase of each prompt; prompts without one get an empty horizon, which
// Validate reports.
//
// Only a surplus of object sets is rejected here, since those rows have no
// scene to attach to. Every other defect survives import and is reported by
// Validate with its own code.
func ImportLegacy(doc LegacyTable) (*ir.SceneTable, error) {
	if len(doc.AllObjects) > len(doc.AllScenes) {
		return nil, &CompileError{
			Field:   "all_objects",
			Message: fmt.Sprintf("%d object sets for %d scenes", len(doc.AllObjects), len(doc.AllScenes)),
		}
	}

	table := &ir.SceneTable{
		Name:    doc.Name,
		Choices: append([]string(nil), doc.ChangeChoices...),
	}
	if table.Name == "" {
		table.Name = DefaultLegacyName
	}

	for _, text := range doc.ChangePrompts {
		table.Prompts = append(table.Prompts, ir.Prompt{
			Horizon: horizonFromText(text),
			Text:    text,
		})
	}

	for _, c := range doc.ObjectColors {
		table.Colors = append(table.Colors, ir.ColorSlot(c))
	}

	for i, image := range doc.AllScenes {
		scene := ir.Scene{Image: image}
		if i < len(doc.AllObjects) {
			for j, raw := range doc.AllObjects[i] {
				obj := ir.ObjectLabel{Label: raw}
				if j < len(table.Colors) {
					obj.Color = table.Colors[j]
				}
				if strings.HasSuffix(raw, ir.ChangeMarker) {
					obj.Label = strings.TrimSuffix(raw, ir.ChangeMarker)
					obj.ChangeTarget = true
				}
				scene.Objects = append(scene.Objects, obj)
			}
		}
		table.Scenes = append(table.Scenes, scene)
	}

	return table, nil
}

// ExportLegacy flattens a table back into parallel arrays, re-applying the
// change marker.
func ExportLegacy(t *ir.SceneTable) LegacyTable {
	doc := LegacyTable{
		Name:          t.Name,
		ChangeChoices: append([]string(nil), t.Choices...),
	}
	for _, p := range t.Prompts {
		doc.ChangePrompts = append(doc.ChangePrompts, p.Text)
	}
	for _, c := range t.Colors {
		doc.ObjectColors = append(doc.ObjectColors, string(c))
	}
	for _, s := range t.Scenes {
		doc.AllScenes = append(doc.AllScenes, s.Image)
		labels := make([]string, len(s.Objects))
		for j, o := range s.Objects {
			labels[j] = o.DisplayLabel()
		}
		doc.AllObjects = append(doc.AllObjects, labels)
	}
	return doc
}

// horizonPattern matches "in 5 minutes", "in 1 hour", "in 1 day".
var horizonPattern = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(minute|hour|day)s?\b`)

// horizonFromText derives a duration string from prompt text.
func horizonFromText(text string) string {
	m := horizonPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	switch strings.ToLower(m[2]) {
	case "minute":
		return fmt.Sprintf("%dm", n)
	case "hour":
		return fmt.Sprintf("%dh", n)
	default:
		return fmt.Sprintf("%dh", n*24)
	}
}
