package cli

import (
	"errors"
	"fmt"
	"runtime"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/changeprob/internal/compiler"
	"github.com/roach88/changeprob/internal/table"
)

// TableReport is the validation outcome for one table file.
type TableReport struct {
	Path       string                     `json:"path"`
	Valid      bool                       `json:"valid"`
	Name       string                     `json:"name,omitempty"`
	Hash       string                     `json:"hash,omitempty"`
	SceneCount int                        `json:"scene_count,omitempty"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`

	loadFailed bool
}

// ValidationResult holds validation results for every table checked.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Tables []TableReport `json:"tables"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [table...]",
		Short: "Validate scene tables",
		Long: `Validate one or more scene tables (.cue, or legacy .yaml/.yml/.json).

Every invariant is checked and every violation reported: three prompts,
the ten choices "1".."10", the five color slots in order, unique scene
images, five objects per scene aligned to their slots, and exactly one
change target per scene. Files are checked concurrently.

Without arguments the table from table.path, or the embedded table, is
validated.

Exit codes:
  0 - All tables valid
  1 - One or more tables break an invariant
  2 - A file could not be read or parsed`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{rootOpts.tablePath(nil)}
			}
			return runValidate(rootOpts, paths, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := opts.logger()

	reports := make([]TableReport, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			reports[i] = validatePath(path)
			logger.Debug("table validated",
				zap.String("path", displayPath(path)),
				zap.Bool("valid", reports[i].Valid),
				zap.Int("errors", len(reports[i].Errors)),
			)
			return nil
		})
	}
	_ = g.Wait()

	result := ValidationResult{Valid: true, Tables: reports}
	loadFailed := false
	errCount := 0
	for _, r := range reports {
		if !r.Valid {
			result.Valid = false
		}
		if r.loadFailed {
			loadFailed = true
		}
		errCount += len(r.Errors)
	}

	exitCode := ExitSuccess
	switch {
	case loadFailed:
		exitCode = ExitCommandError
	case !result.Valid:
		exitCode = ExitFailure
	}

	if formatter.Format == "json" {
		var err error
		if result.Valid {
			err = formatter.Success(result)
		} else {
			first := firstError(reports)
			err = formatter.Failure(first.Code, first.Message, result)
		}
		if err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if exitCode != ExitSuccess {
		return NewExitError(exitCode, fmt.Sprintf("validation failed with %d error(s)", errCount))
	}
	return nil
}

// validatePath loads one table and reports every problem found.
func validatePath(path string) TableReport {
	report := TableReport{Path: displayPath(path)}

	tb, err := LoadTable(path)
	if err == nil {
		report.Valid = true
		report.Name = tb.Name()
		report.Hash = tb.Hash()
		report.SceneCount = tb.SceneCount()
		return report
	}

	var loadErr *LoadError
	var invalid *table.ValidationFailedError
	switch {
	case errors.As(err, &invalid):
		report.Errors = invalid.Errors
	case errors.As(err, &loadErr):
		report.loadFailed = true
		if len(loadErr.Details) > 0 {
			for _, d := range loadErr.Details {
				report.Errors = append(report.Errors, compiler.ValidationError{
					Field:   d.Path,
					Message: d.Message,
					Code:    loadErr.Code,
				})
			}
		} else {
			report.Errors = []compiler.ValidationError{{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr.Pos),
			}}
		}
	default:
		report.loadFailed = true
		report.Errors = []compiler.ValidationError{{
			Field:   "load",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		}}
	}
	return report
}

func firstError(reports []TableReport) compiler.ValidationError {
	for _, r := range reports {
		if len(r.Errors) > 0 {
			return r.Errors[0]
		}
	}
	return compiler.ValidationError{Code: ErrCodeGeneric, Message: "validation failed"}
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateText prints one block per table, in argument order.
func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer

	for _, r := range result.Tables {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: %s, %d scene(s), hash %s\n", r.Path, r.Name, r.SceneCount, shortHash(r.Hash))
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Path)
		for _, err := range r.Errors {
			if err.Line > 0 {
				fmt.Fprintf(w, "  line %d\n", err.Line)
			}
			fmt.Fprintf(w, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
		}
	}

	fmt.Fprintln(w)
	if result.Valid {
		fmt.Fprintln(w, "✓ All tables valid")
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
	}
}

// shortHash abbreviates a content hash for text output.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
