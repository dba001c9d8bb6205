package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/changeprob/internal/compiler"
	"github.com/roach88/changeprob/internal/table"
)

// Legacy output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteLegacy writes the table in the parallel-array layout, with the change
// target marked by the "_CHANGE" suffix. The output loads back through the
// CLI loader unchanged.
func WriteLegacy(w io.Writer, t *table.Table, format string) error {
	doc := compiler.ExportLegacy(t.IR())

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown legacy format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}
