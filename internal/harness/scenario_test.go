package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: mirror
description: "mirror scene"
table: tables/mirror.cue
checks:
  - op: scene_count
    expect: 1
  - op: object
    index: 0
    slot: 0
    expect: { color: red, label: mirror, change_target: true }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "mirror", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tables/mirror.cue"), scenario.Table)
	require.Len(t, scenario.Checks, 2)
	assert.Equal(t, OpSceneCount, scenario.Checks[0].Op)
	assert.Equal(t, 1, scenario.Checks[0].Expect)
	require.NotNil(t, scenario.Checks[1].Slot)
	assert.Equal(t, 0, *scenario.Checks[1].Slot)
	assert.Equal(t, map[string]interface{}{
		"color": "red", "label": "mirror", "change_target": true,
	}, scenario.Checks[1].Expect)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: based
table: testdata/tables/two_scenes.cue
checks:
  - op: scene_count
    expect: 2
`)

	scenario, err := LoadScenarioWithBasePath(path, "/project")
	require.NoError(t, err)
	assert.Equal(t, "/project/testdata/tables/two_scenes.cue", scenario.Table)
}

func TestLoadScenario_AbsoluteTableKept(t *testing.T) {
	path := writeScenario(t, `
name: abs
table: /tables/t.cue
checks:
  - op: scene_count
    expect: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "/tables/t.cue", scenario.Table)
}

func TestLoadScenario_EmptyTableMeansDefault(t *testing.T) {
	path := writeScenario(t, `
name: embedded
checks:
  - op: scene_count
    expect: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Empty(t, scenario.Table)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
checks:
  - op: scene_count
    expects: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "missing name",
			yaml:    "checks:\n  - op: scene_count\n    expect: 1\n",
			message: "name is required",
		},
		{
			name:    "no checks",
			yaml:    "name: empty\n",
			message: "at least one check",
		},
		{
			name:    "missing op",
			yaml:    "name: x\nchecks:\n  - expect: 1\n",
			message: "op is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\nchecks:\n  - op: get_scene\n    expect: 1\n",
			message: `unknown op "get_scene"`,
		},
		{
			name:    "scene without index",
			yaml:    "name: x\nchecks:\n  - op: scene\n    expect: a.png\n",
			message: "index is required for scene",
		},
		{
			name:    "object without slot",
			yaml:    "name: x\nchecks:\n  - op: object\n    index: 0\n    expect: {}\n",
			message: "index and slot are required",
		},
		{
			name:    "scene_count with index",
			yaml:    "name: x\nchecks:\n  - op: scene_count\n    index: 0\n    expect: 1\n",
			message: "takes no index",
		},
		{
			name:    "scene with slot",
			yaml:    "name: x\nchecks:\n  - op: scene\n    index: 0\n    slot: 1\n    expect: a.png\n",
			message: "takes no slot",
		},
		{
			name:    "no expectation",
			yaml:    "name: x\nchecks:\n  - op: scene_count\n",
			message: "exactly one of expect",
		},
		{
			name:    "two expectations",
			yaml:    "name: x\nchecks:\n  - op: prompts\n    expect: a\n    expect_list: [a]\n",
			message: "exactly one of expect",
		},
		{
			name:    "unknown error kind",
			yaml:    "name: x\nchecks:\n  - op: scene\n    index: 9\n    error: not_found\n",
			message: `unknown error kind "not_found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseScenario_NegativeIndexAllowed(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: negative
checks:
  - op: scene
    index: -1
    error: out_of_range
`))
	require.NoError(t, err)
	assert.Equal(t, -1, *scenario.Checks[0].Index)
}
