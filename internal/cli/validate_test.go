package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/changeprob/internal/table"
)

func TestValidateEmbeddedTable(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ (embedded): boxed_scenes, 1 scene(s)")
	assert.Contains(t, out, table.Default().Hash()[:12])
	assert.Contains(t, out, "✓ All tables valid")
}

func TestValidateMultipleFiles(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}),
		projectPath("testdata", "tables", "two_scenes.cue"),
		projectPath("testdata", "tables", "boxed_legacy.yaml"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "two_scenes, 2 scene(s)")
	assert.Contains(t, out, "legacy_scenes, 1 scene(s)")
}

func TestValidateValidJSON(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "json"}),
		projectPath("testdata", "tables", "two_scenes.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Tables, 1)
	assert.Equal(t, 2, resp.Data.Tables[0].SceneCount)
	assert.Len(t, resp.Data.Tables[0].Hash, 64)
}

func TestValidateInvariantViolation(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}),
		projectPath("testdata", "tables", "two_targets.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")

	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "E127: scenes[0]")
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateInvariantViolationJSON(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "json"}),
		projectPath("testdata", "tables", "two_targets.yaml"))
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E127", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Tables[0].Errors, 1)
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	path := writeTemp(t, "broken.yaml", `
name: broken
change_prompts: ["in 5 minutes?", "in 1 hour?"]
change_choices: ["1","2","3","4","5","6","7","8","9"]
all_scenes: [a.png, a.png]
object_colors: [red, orange, yellow, green, blue]
all_objects:
  - [a, b, c, d, e]
  - [f_CHANGE, g, h, i, j]
`)

	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	for _, code := range []string{"E120", "E122", "E124", "E127"} {
		assert.Contains(t, out, code+":", "missing %s", code)
	}
}

func TestValidateMissingFile(t *testing.T) {
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}),
		filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateLoadErrorWinsExitCode(t *testing.T) {
	_, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}),
		projectPath("testdata", "tables", "two_targets.yaml"),
		filepath.Join(t.TempDir(), "missing.cue"),
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateLegacySchemaErrors(t *testing.T) {
	path := writeTemp(t, "bad.yaml", `
change_prompts: ["a", "b", "c"]
change_choices: []
all_scenes: [a.png]
object_colors: [red, purple]
all_objects: [[x, y]]
`)
	out, err := runCommand(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003: object_colors.1")
}

func TestValidateArgumentOrderKept(t *testing.T) {
	paths := []string{
		projectPath("testdata", "tables", "two_scenes.cue"),
		projectPath("testdata", "tables", "two_targets.yaml"),
		projectPath("testdata", "tables", "boxed_legacy.yaml"),
	}
	out, _ := runCommand(t, NewValidateCommand(&RootOptions{Format: "json"}), paths...)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Tables, 3)
	for i, p := range paths {
		assert.Equal(t, p, resp.Data.Tables[i].Path)
	}
	assert.True(t, resp.Data.Tables[0].Valid)
	assert.False(t, resp.Data.Tables[1].Valid)
	assert.True(t, resp.Data.Tables[2].Valid)
}
