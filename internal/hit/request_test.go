package hit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/changeprob/internal/ir"
)

func sampleHIT() *ir.HITSpec {
	return &ir.HITSpec{
		Title:              "Judging How Scenes Change - 5 Minutes",
		Description:        "Rate how likely boxed objects are to change.",
		Keywords:           []string{"scenes", "psychology", "experiment"},
		ExperimentURL:      "https://example.org/change_prob.html?run=1&cond=box",
		FrameHeight:        600,
		MaxAssignments:     85,
		Lifetime:           "6h",
		AssignmentDuration: "20m",
		AutoApprovalDelay:  "1h",
		RewardCents:        75,
		Sandbox:            true,
		Qualifications: []ir.Qualification{
			{Kind: ir.QualPercentApproved, Comparator: "GreaterThanOrEqualTo", Value: 95},
			{Kind: ir.QualHITsApproved, Comparator: "GreaterThanOrEqualTo", Value: 10},
			{Kind: ir.QualLocale, Comparator: "EqualTo", Locale: "US"},
		},
	}
}

func TestBuild(t *testing.T) {
	env, err := Build(sampleHIT())
	require.NoError(t, err)

	assert.Equal(t, SandboxEndpoint, env.Endpoint)
	assert.Equal(t, Target, env.Target)

	req := env.Body
	assert.Equal(t, "scenes, psychology, experiment", req.Keywords)
	assert.Equal(t, "0.75", req.Reward)
	assert.Equal(t, int64(85), req.MaxAssignments)
	assert.Equal(t, int64(6*60*60), req.LifetimeInSeconds)
	assert.Equal(t, int64(20*60), req.AssignmentDurationInSeconds)
	assert.Equal(t, int64(60*60), req.AutoApprovalDelayInSeconds)

	assert.Equal(t, []QualificationRequirement{
		{QualificationTypeID: PercentApprovedTypeID, Comparator: "GreaterThanOrEqualTo", IntegerValues: []int64{95}},
		{QualificationTypeID: HITsApprovedTypeID, Comparator: "GreaterThanOrEqualTo", IntegerValues: []int64{10}},
		{QualificationTypeID: LocaleTypeID, Comparator: "EqualTo", LocaleValues: []Locale{{Country: "US"}}},
	}, req.QualificationRequirements)
}

func TestBuildProductionEndpoint(t *testing.T) {
	spec := sampleHIT()
	spec.Sandbox = false

	env, err := Build(spec)
	require.NoError(t, err)
	assert.Equal(t, ProductionEndpoint, env.Endpoint)
}

func TestBuildRejectsInvalid(t *testing.T) {
	spec := sampleHIT()
	spec.RewardCents = 0
	spec.Lifetime = "forever"

	_, err := Build(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E132")
	assert.Contains(t, err.Error(), "E133")
}

func TestBuildRejectsSubSecondDurations(t *testing.T) {
	for _, lifetime := range []string{"500ms", "90.5s"} {
		spec := sampleHIT()
		spec.Lifetime = lifetime

		env, err := Build(spec)
		require.Error(t, err, lifetime)
		assert.Nil(t, env)
		assert.Contains(t, err.Error(), "E132")
	}
}

func TestBuildSecondsAreExact(t *testing.T) {
	spec := sampleHIT()
	spec.Lifetime = "90s"
	spec.AutoApprovalDelay = "0s"

	env, err := Build(spec)
	require.NoError(t, err)
	assert.Equal(t, int64(90), env.Body.LifetimeInSeconds)
	assert.Equal(t, int64(0), env.Body.AutoApprovalDelayInSeconds)
}

func TestBuildNil(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hit block")
}

func TestExternalQuestion(t *testing.T) {
	q, err := ExternalQuestion("https://example.org/x.html?a=1&b=2", 600)
	require.NoError(t, err)
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
			`<ExternalQuestion xmlns="`+externalQuestionNS+`">`+
			`<ExternalURL>https://example.org/x.html?a=1&amp;b=2</ExternalURL>`+
			`<FrameHeight>600</FrameHeight></ExternalQuestion>`,
		q)
}

func TestFormatReward(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{75, "0.75"},
		{5, "0.05"},
		{100, "1.00"},
		{1250, "12.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatReward(tt.cents))
	}
}

func TestWrite(t *testing.T) {
	env, err := Build(sampleHIT())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, env))

	out := buf.String()
	assert.Contains(t, out, `"QualificationTypeId": "000000000000000000L0"`)
	assert.Contains(t, out, "<ExternalQuestion", "question XML is not HTML-escaped")
	assert.NotContains(t, out, `\u003c`)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *env, decoded)
}
