package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/changeprob/internal/config"
	"github.com/roach88/changeprob/internal/observability"
)

// RootOptions holds global flags for all commands, plus the config and
// logger built from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the changeprob CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "changeprob",
		Short: "changeprob - scene tables for the change-probability experiment",
		Long: `Author, check and publish the scene configuration table used by the
change-probability experiment: three time-horizon prompts, a 1-10 rating
scale and boxed scenes whose five objects sit on red, orange, yellow, green
and blue slots with exactly one change target each.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./changeprob.yaml or $HOME/changeprob.yaml)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewPublicationsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHITCommand(opts))

	return cmd
}

// setup loads config and builds the logger. Logs go to stderr so JSON output
// on stdout stays parseable.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	logger, err := observability.New(cfg.Log, zapcore.AddSync(cmd.ErrOrStderr()), o.Verbose)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	o.Config = cfg
	o.Logger = logger
	return nil
}

// config returns the loaded config, or defaults when a command runs
// without the root (as in tests).
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// tablePath picks the table argument, falling back to table.path from
// config. Empty means the embedded table.
func (o *RootOptions) tablePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.config().Table.Path
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
