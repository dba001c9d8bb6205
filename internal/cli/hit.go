package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/changeprob/internal/hit"
)

// HITOptions holds flags for the hit command.
type HITOptions struct {
	*RootOptions
	Output string
}

// NewHITCommand creates the hit command.
func NewHITCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HITOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hit [table]",
		Short: "Render the MTurk CreateHIT request for a table",
		Long: `Render the CreateHIT request described by a table's hit block.

The output names the requester endpoint (sandbox unless the block sets
sandbox: false) and the request body with an ExternalQuestion framing the
experiment URL. Nothing is sent.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHIT(opts, opts.tablePath(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")

	return cmd
}

func runHIT(opts *HITOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tb, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	env, err := hit.Build(tb.HIT())
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeGeneric, fmt.Sprintf("%s: %v", tb.Name(), err), nil)
	}

	if formatter.Format == "json" && opts.Output == "" {
		return formatter.Success(env)
	}

	var buf bytes.Buffer
	if err := hit.Write(&buf, env); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"endpoint": env.Endpoint, "output": opts.Output})
	}
	fmt.Fprintf(formatter.Writer, "✓ Wrote CreateHIT request for %s to %s\n", env.Endpoint, opts.Output)
	return nil
}
