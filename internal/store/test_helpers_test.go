package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTable builds a valid single-scene table named name.
func createTestTable(t *testing.T, name string) *table.Table {
	t.Helper()
	tb, err := table.New(&ir.SceneTable{
		Name: name,
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
	})
	if err != nil {
		t.Fatalf("table.New() failed: %v", err)
	}
	return tb
}
