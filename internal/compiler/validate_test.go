package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/changeprob/internal/ir"
)

// =============================================================================
// SceneTable Validation Tests
// =============================================================================

func validTable() *ir.SceneTable {
	return &ir.SceneTable{
		Name: "boxed_scenes",
		Prompts: []ir.Prompt{
			{Horizon: "5m", Text: "in 5 minutes?"},
			{Horizon: "1h", Text: "in 1 hour?"},
			{Horizon: "24h", Text: "in 1 day?"},
		},
		Choices: append([]string(nil), ir.CanonicalChoices...),
		Colors:  append([]ir.ColorSlot(nil), ir.CanonicalColorSlots...),
		Scenes: []ir.Scene{{
			Image: "01_L_filler_present_mirror_BOX.png",
			Objects: []ir.ObjectLabel{
				{Color: ir.ColorRed, Label: "mirror", ChangeTarget: true},
				{Color: ir.ColorOrange, Label: "painting"},
				{Color: ir.ColorYellow, Label: "bedpost"},
				{Color: ir.ColorGreen, Label: "pillow"},
				{Color: ir.ColorBlue, Label: "TV"},
			},
		}},
	}
}

func validHIT() *ir.HITSpec {
	return &ir.HITSpec{
		Title:              "Judging How Scenes Change",
		Description:        "Rate how likely boxed objects are to change.",
		Keywords:           []string{"scenes", "psychology"},
		ExperimentURL:      "https://example.org/change_prob.html",
		FrameHeight:        600,
		MaxAssignments:     100,
		Lifetime:           "6h",
		AssignmentDuration: "15m",
		AutoApprovalDelay:  "1h",
		RewardCents:        75,
		Sandbox:            true,
		Qualifications: []ir.Qualification{
			{Kind: ir.QualPercentApproved, Comparator: "GreaterThanOrEqualTo", Value: 95},
			{Kind: ir.QualHITsApproved, Comparator: "GreaterThanOrEqualTo", Value: 1},
			{Kind: ir.QualLocale, Comparator: "EqualTo", Locale: "US"},
		},
	}
}

func requireSingleCode(t *testing.T, errs []ValidationError, code, field string) {
	t.Helper()
	require.Len(t, errs, 1, "errors: %v", errs)
	assert.Equal(t, code, errs[0].Code)
	assert.Equal(t, field, errs[0].Field)
}

func TestValidateSceneTableValid(t *testing.T) {
	assert.Empty(t, Validate(validTable()))
}

func TestValidateSceneTableByValue(t *testing.T) {
	assert.Empty(t, Validate(*validTable()))
}

func TestValidateSceneTableMissingName(t *testing.T) {
	table := validTable()
	table.Name = "  "
	requireSingleCode(t, Validate(table), ErrTableNameMissing, "name")
}

func TestValidateSceneTableNameSingleLine(t *testing.T) {
	for _, name := range []string{
		"boxed\nwindow.location='x'",
		"boxed\rscenes",
		"boxed\u2028scenes",
		"boxed\x00",
	} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			table := validTable()
			table.Name = name
			requireSingleCode(t, Validate(table), ErrTableNameMissing, "name")
		})
	}

	table := validTable()
	table.Name = "boxed scenes (pilot 2)"
	assert.Empty(t, Validate(table))
}

func TestValidatePromptCount(t *testing.T) {
	table := validTable()
	table.Prompts = table.Prompts[:2]
	requireSingleCode(t, Validate(table), ErrPromptCount, "prompts")
}

func TestValidatePromptHorizons(t *testing.T) {
	tests := []struct {
		name    string
		horizon string
		field   string
	}{
		{"unparseable", "soon", "prompts[1].horizon"},
		{"not increasing", "5m", "prompts[1].horizon"},
		{"negative", "-1h", "prompts[1].horizon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := validTable()
			table.Prompts[1].Horizon = tt.horizon
			requireSingleCode(t, Validate(table), ErrPromptHorizon, tt.field)
		})
	}
}

func TestValidatePromptTexts(t *testing.T) {
	table := validTable()
	table.Prompts[2].Text = table.Prompts[0].Text
	requireSingleCode(t, Validate(table), ErrPromptHorizon, "prompts[2].text")

	table = validTable()
	table.Prompts[0].Text = ""
	requireSingleCode(t, Validate(table), ErrPromptHorizon, "prompts[0].text")
}

func TestValidateChoices(t *testing.T) {
	table := validTable()
	table.Choices = table.Choices[:9]
	requireSingleCode(t, Validate(table), ErrChoiceScale, "choices")

	table = validTable()
	table.Choices[9] = "11"
	requireSingleCode(t, Validate(table), ErrChoiceScale, "choices[9]")
}

func TestValidateColors(t *testing.T) {
	table := validTable()
	table.Colors[0], table.Colors[1] = table.Colors[1], table.Colors[0]

	errs := Validate(table)
	codes := codesOf(errs)
	assert.True(t, codes[ErrColorSlots])
	// objects are still tagged in canonical order, so they no longer line up
	assert.True(t, codes[ErrObjectAlignment])
}

func TestValidateColorCount(t *testing.T) {
	table := validTable()
	table.Colors = table.Colors[:4]

	codes := codesOf(Validate(table))
	assert.True(t, codes[ErrColorSlots])
	assert.True(t, codes[ErrObjectCount])
}

func TestValidateNoScenes(t *testing.T) {
	table := validTable()
	table.Scenes = nil
	requireSingleCode(t, Validate(table), ErrSceneImage, "scenes")
}

func TestValidateSceneImages(t *testing.T) {
	tests := []struct {
		name  string
		image string
	}{
		{"empty", ""},
		{"no extension", "01_L_filler_present_mirror_BOX"},
		{"unsupported extension", "scene.bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := validTable()
			table.Scenes[0].Image = tt.image
			requireSingleCode(t, Validate(table), ErrSceneImage, "scenes[0].image")
		})
	}
}

func TestValidateSceneImageCaseInsensitiveExtension(t *testing.T) {
	table := validTable()
	table.Scenes[0].Image = "scene.JPG"
	assert.Empty(t, Validate(table))
}

func TestValidateDuplicateSceneImage(t *testing.T) {
	table := validTable()
	table.Scenes = append(table.Scenes, table.Clone().Scenes[0])
	requireSingleCode(t, Validate(table), ErrSceneImage, "scenes[1].image")
}

func TestValidateObjectCount(t *testing.T) {
	table := validTable()
	table.Scenes[0].Objects = table.Scenes[0].Objects[:4]
	requireSingleCode(t, Validate(table), ErrObjectCount, "scenes[0].objects")
}

func TestValidateObjectAlignment(t *testing.T) {
	table := validTable()
	table.Scenes[0].Objects[3].Color = ir.ColorBlue
	requireSingleCode(t, Validate(table), ErrObjectAlignment, "scenes[0].objects[3].color")
}

func TestValidateChangeTargetNone(t *testing.T) {
	table := validTable()
	table.Scenes[0].Objects[0].ChangeTarget = false

	errs := Validate(table)
	requireSingleCode(t, errs, ErrChangeTarget, "scenes[0].objects")
	assert.Contains(t, errs[0].Message, "0 change targets")
}

func TestValidateChangeTargetMultiple(t *testing.T) {
	table := validTable()
	table.Scenes[0].Objects[4].ChangeTarget = true

	errs := Validate(table)
	requireSingleCode(t, errs, ErrChangeTarget, "scenes[0].objects")
	assert.Contains(t, errs[0].Message, "2 change targets")
}

func TestValidateObjectLabel(t *testing.T) {
	table := validTable()
	table.Scenes[0].Objects[1].Label = ""
	requireSingleCode(t, Validate(table), ErrObjectLabel, "scenes[0].objects[1].label")

	table = validTable()
	table.Scenes[0].Objects[1].Label = "painting_CHANGE"
	requireSingleCode(t, Validate(table), ErrObjectLabel, "scenes[0].objects[1].label")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	table := validTable()
	table.Name = ""
	table.Choices = nil
	table.Scenes[0].Objects[0].ChangeTarget = false

	errs := Validate(table)
	require.Len(t, errs, 3)
	assert.Equal(t, ErrTableNameMissing, errs[0].Code)
	assert.Equal(t, ErrChoiceScale, errs[1].Code)
	assert.Equal(t, ErrChangeTarget, errs[2].Code)
}

// =============================================================================
// HITSpec Validation Tests
// =============================================================================

func TestValidateHITValid(t *testing.T) {
	assert.Empty(t, Validate(validHIT()))
	assert.Empty(t, Validate(*validHIT()))
}

func TestValidateTableWithInvalidHIT(t *testing.T) {
	table := validTable()
	table.HIT = validHIT()
	table.HIT.RewardCents = 0
	requireSingleCode(t, Validate(table), ErrHITReward, "hit.reward_cents")
}

func TestValidateHITRequired(t *testing.T) {
	hit := validHIT()
	hit.Title = ""
	requireSingleCode(t, Validate(hit), ErrHITRequired, "hit.title")

	hit = validHIT()
	hit.ExperimentURL = "http://example.org/change_prob.html"
	requireSingleCode(t, Validate(hit), ErrHITRequired, "hit.experiment_url")

	hit = validHIT()
	hit.ExperimentURL = "change_prob.html"
	requireSingleCode(t, Validate(hit), ErrHITRequired, "hit.experiment_url")
}

func TestValidateHITCounts(t *testing.T) {
	hit := validHIT()
	hit.MaxAssignments = 0
	requireSingleCode(t, Validate(hit), ErrHITCount, "hit.max_assignments")

	hit = validHIT()
	hit.FrameHeight = -1
	requireSingleCode(t, Validate(hit), ErrHITCount, "hit.frame_height")
}

func TestValidateHITDurations(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(h *ir.HITSpec)
		field string
	}{
		{"lifetime", func(h *ir.HITSpec) { h.Lifetime = "six hours" }, "hit.lifetime"},
		{"assignment duration", func(h *ir.HITSpec) { h.AssignmentDuration = "0s" }, "hit.assignment_duration"},
		{"auto approval", func(h *ir.HITSpec) { h.AutoApprovalDelay = "" }, "hit.auto_approval_delay"},
		{"sub-second lifetime", func(h *ir.HITSpec) { h.Lifetime = "500ms" }, "hit.lifetime"},
		{"fractional seconds", func(h *ir.HITSpec) { h.AssignmentDuration = "90.5s" }, "hit.assignment_duration"},
		{"lifetime under minimum", func(h *ir.HITSpec) { h.Lifetime = "29s" }, "hit.lifetime"},
		{"lifetime over a year", func(h *ir.HITSpec) { h.Lifetime = "8761h" }, "hit.lifetime"},
		{"assignment under minimum", func(h *ir.HITSpec) { h.AssignmentDuration = "10s" }, "hit.assignment_duration"},
		{"auto approval over 30 days", func(h *ir.HITSpec) { h.AutoApprovalDelay = "721h" }, "hit.auto_approval_delay"},
		{"negative auto approval", func(h *ir.HITSpec) { h.AutoApprovalDelay = "-1h" }, "hit.auto_approval_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := validHIT()
			tt.mut(hit)
			requireSingleCode(t, Validate(hit), ErrHITDuration, tt.field)
		})
	}
}

func TestValidateHITDurationBounds(t *testing.T) {
	hit := validHIT()
	hit.Lifetime = "30s"
	hit.AssignmentDuration = "8760h"
	hit.AutoApprovalDelay = "0s"
	assert.Empty(t, Validate(hit))

	hit.Lifetime = "500ms"
	errs := Validate(hit)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "whole number of seconds")
}

func TestValidateHITQualifications(t *testing.T) {
	tests := []struct {
		name  string
		qual  ir.Qualification
		field string
	}{
		{"unknown comparator", ir.Qualification{Kind: ir.QualHITsApproved, Comparator: "AtLeast", Value: 1}, "hit.qualifications[0].comparator"},
		{"percent over 100", ir.Qualification{Kind: ir.QualPercentApproved, Comparator: "GreaterThan", Value: 101}, "hit.qualifications[0].value"},
		{"negative count", ir.Qualification{Kind: ir.QualHITsApproved, Comparator: "GreaterThan", Value: -1}, "hit.qualifications[0].value"},
		{"lowercase locale", ir.Qualification{Kind: ir.QualLocale, Comparator: "EqualTo", Locale: "us"}, "hit.qualifications[0].locale"},
		{"digit in locale", ir.Qualification{Kind: ir.QualLocale, Comparator: "EqualTo", Locale: "1A"}, "hit.qualifications[0].locale"},
		{"numeric comparator on locale", ir.Qualification{Kind: ir.QualLocale, Comparator: "GreaterThan", Locale: "US"}, "hit.qualifications[0].comparator"},
		{"unknown kind", ir.Qualification{Kind: "masters", Comparator: "EqualTo"}, "hit.qualifications[0].kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := validHIT()
			hit.Qualifications = []ir.Qualification{tt.qual}
			requireSingleCode(t, Validate(hit), ErrHITQualification, tt.field)
		})
	}
}

// =============================================================================
// Unsupported Types
// =============================================================================

func TestValidateHITLocaleNotEqualTo(t *testing.T) {
	hit := validHIT()
	hit.Qualifications = []ir.Qualification{{Kind: ir.QualLocale, Comparator: "NotEqualTo", Locale: "CA"}}
	assert.Empty(t, Validate(hit))
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a table")
	requireSingleCode(t, errs, ErrUnsupportedIRType, "type")
	assert.Contains(t, errs[0].Message, "string")
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "name", Message: "required", Code: ErrTableNameMissing}
	assert.Equal(t, "[E129] name: required", err.Error())

	err.Line = 4
	assert.Equal(t, "[E129] line 4: name: required", err.Error())
}
