package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/changeprob/internal/compiler"
)

func TestExportJSToStdout(t *testing.T) {
	out, err := runCommand(t, NewExportCommand(&RootOptions{Format: "text"}), "js")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join("..", "render", "testdata", "golden", "boxed_scenes.js.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), out)
}

func TestExportJSToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "scenes.js")
	out, err := runCommand(t, NewExportCommand(&RootOptions{Format: "json"}),
		"js", projectPath("testdata", "tables", "two_scenes.cue"), "-o", outPath)
	require.NoError(t, err)

	var resp struct {
		Data ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "js", resp.Data.Kind)
	assert.Equal(t, "two_scenes", resp.Data.Name)
	assert.Equal(t, outPath, resp.Data.Output)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"plant_CHANGE"`)
}

func TestExportLegacyJSON(t *testing.T) {
	out, err := runCommand(t, NewExportCommand(&RootOptions{Format: "text"}), "json")
	require.NoError(t, err)

	var doc compiler.LegacyTable
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "boxed_scenes", doc.Name)
	assert.Equal(t, [][]string{{"mirror_CHANGE", "painting", "bedpost", "pillow", "TV"}}, doc.AllObjects)
}

func TestExportYAMLRoundTrip(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "two.yaml")
	_, err := runCommand(t, NewExportCommand(&RootOptions{Format: "text"}),
		"yaml", projectPath("testdata", "tables", "two_scenes.cue"), "-o", outPath)
	require.NoError(t, err)

	original, err := LoadTable(projectPath("testdata", "tables", "two_scenes.cue"))
	require.NoError(t, err)
	exported, err := LoadTable(outPath)
	require.NoError(t, err)

	// The legacy layout has no hit block, so compare the table content.
	assert.Equal(t, original.Name(), exported.Name())
	assert.Equal(t, original.SceneCount(), exported.SceneCount())
	for i := 0; i < original.SceneCount(); i++ {
		want, _ := original.Objects(i)
		got, err := exported.Objects(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestExportInvalidTable(t *testing.T) {
	_, err := runCommand(t, NewExportCommand(&RootOptions{Format: "text"}),
		"js", projectPath("testdata", "tables", "two_targets.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
