// Package assets embeds the compiled-in scene table, the CUE and JSON schemas
// that guard authored tables, and the templates used for export.
package assets

import (
	"embed"
	"fmt"
)

//go:embed tables/*.cue cue/*.cue schemas/*.json templates/*.hbs
var files embed.FS

// Embedded asset paths.
const (
	DefaultTable      = "tables/boxed_scenes.cue"
	TableSchemaCUE    = "cue/schema.cue"
	LegacyTableSchema = "schemas/legacy-table.schema.json"
	ScenesJSTemplate  = "templates/scenes.js.hbs"
)

// Read returns the contents of an embedded asset.
func Read(path string) ([]byte, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embedded asset %s: %w", path, err)
	}
	return data, nil
}

// MustRead is like Read but panics if the asset is missing.
// Embedded paths are fixed at build time, so a miss is a programming error.
func MustRead(path string) []byte {
	data, err := Read(path)
	if err != nil {
		panic(err)
	}
	return data
}
