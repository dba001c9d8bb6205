package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/changeprob/internal/render"
	"github.com/roach88/changeprob/internal/table"
)

// ExportOptions holds flags shared by the export subcommands.
type ExportOptions struct {
	*RootOptions
	Output string
}

// ExportResult reports where an export went.
type ExportResult struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Output string `json:"output"`
}

// NewExportCommand creates the export command and its js, json and yaml
// subcommands.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a table for the browser harness",
		Long: `Export a table in the parallel-array layout the browser harness reads.

  js    JavaScript constants (change_prompts, change_choices, all_scenes,
        object_colors, all_objects), change target marked with _CHANGE
  json  the same arrays as a JSON document
  yaml  the same arrays as a YAML document

JSON and YAML exports load back through every command unchanged.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")

	cmd.AddCommand(newExportSubcommand(opts, "js", "Export JavaScript constants", render.WriteJS))
	cmd.AddCommand(newExportSubcommand(opts, render.FormatJSON, "Export a legacy JSON document",
		func(w io.Writer, tb *table.Table) error { return render.WriteLegacy(w, tb, render.FormatJSON) }))
	cmd.AddCommand(newExportSubcommand(opts, render.FormatYAML, "Export a legacy YAML document",
		func(w io.Writer, tb *table.Table) error { return render.WriteLegacy(w, tb, render.FormatYAML) }))

	return cmd
}

type exportFunc func(io.Writer, *table.Table) error

func newExportSubcommand(opts *ExportOptions, kind, short string, write exportFunc) *cobra.Command {
	return &cobra.Command{
		Use:           kind + " [table]",
		Short:         short,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, kind, opts.tablePath(args), write, cmd)
		},
	}
}

func runExport(opts *ExportOptions, kind, path string, write exportFunc, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tb, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := write(&buf, tb); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("rendering %s: %v", kind, err), nil)
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	opts.logger().Info("exported table",
		zap.String("kind", kind),
		zap.String("path", opts.Output),
		zap.String("hash", tb.Hash()),
	)

	if formatter.Format == "json" {
		return formatter.Success(ExportResult{Kind: kind, Name: tb.Name(), Hash: tb.Hash(), Output: opts.Output})
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported %s as %s to %s\n", tb.Name(), kind, opts.Output)
	return nil
}
