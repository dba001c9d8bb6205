package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult summarizes a compiled table.
type CompilationResult struct {
	Name       string          `json:"name"`
	Hash       string          `json:"hash"`
	SceneCount int             `json:"scene_count"`
	Output     string          `json:"output,omitempty"`
	IR         json.RawMessage `json:"ir,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [table]",
		Short: "Compile a scene table to canonical IR",
		Long: `Compile a scene table to canonical IR JSON.

The table is parsed, validated and written as RFC 8785 canonical JSON, the
same bytes its content hash is computed over. Without --output the IR is
written to stdout.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, opts.tablePath(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tb, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Compiled %s from %s", tb.Name(), displayPath(path))

	data, err := canonicalIR(tb)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	result := CompilationResult{
		Name:       tb.Name(),
		Hash:       tb.Hash(),
		SceneCount: tb.SceneCount(),
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		result.Output = opts.Output
		opts.logger().Info("wrote canonical IR", zap.String("path", opts.Output), zap.String("hash", tb.Hash()))
	}

	if formatter.Format == "json" {
		if opts.Output == "" {
			result.IR = data
		}
		return formatter.Success(result)
	}

	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, string(data))
		return nil
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %s: %d scene(s), hash %s\n", result.Name, result.SceneCount, result.Hash)
	fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", opts.Output)
	return nil
}

// canonicalIR returns the table's canonical JSON.
func canonicalIR(tb *table.Table) ([]byte, error) {
	data, err := ir.MarshalCanonical(tb.IR().ToIR())
	if err != nil {
		return nil, fmt.Errorf("marshaling IR: %w", err)
	}
	return data, nil
}
