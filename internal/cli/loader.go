package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/changeprob/internal/compiler"
	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/schema"
	"github.com/roach88/changeprob/internal/table"
)

// LoadError represents an error that occurred before a table could be
// validated: the file is missing, unreadable or not a table at all.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos                // CUE position if available
	Details []schema.ValidationError // legacy schema violations
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// describe is the message with its CUE position, without the code.
func (e *LoadError) describe() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Error code constants - unified across all CLI commands.
// Table invariant codes (E1xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUnsupported = "E002" // Unsupported table file extension
	ErrCodeSchema      = "E003" // Legacy document violates its JSON Schema
	ErrCodeLoadFailed  = "E004" // CUE, YAML or JSON parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE schema unification or import failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeOutOfRange  = "E008" // Scene index out of range
	ErrCodeStore       = "E009" // Publication store error
)

// LoadTable reads a table file and returns a validated Table.
//
// .cue files are compiled against the embedded schema; .yaml, .yml and
// .json files are treated as legacy parallel-array documents, checked
// against their JSON Schema and imported. An empty path yields the embedded
// default table.
//
// Failures before validation are *LoadError. A table that parses but breaks
// an invariant is returned as *table.ValidationFailedError.
func LoadTable(path string) (*table.Table, error) {
	if path == "" {
		return table.Default(), nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".cue", ".yaml", ".yml", ".json":
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported table file %q: want .cue, .yaml, .yml or .json", path),
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("table file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading table file: %v", err)}
	}

	var st *ir.SceneTable
	if ext == ".cue" {
		st, err = compileCUE(path, data)
	} else {
		st, err = importLegacy(path, ext, data)
	}
	if err != nil {
		return nil, err
	}
	return table.New(st)
}

func compileCUE(path string, data []byte) (*ir.SceneTable, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE file: %v", err)}
	}

	st, err := compiler.CompileTable(v)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return st, nil
}

func importLegacy(path, ext string, data []byte) (*ir.SceneTable, error) {
	res, err := schema.ValidateLegacy(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if !res.Valid {
		return nil, &LoadError{
			Code:    ErrCodeSchema,
			Message: fmt.Sprintf("%s does not match the legacy table schema: %s", path, res.Errors[0].Error()),
			Details: res.Errors,
		}
	}

	var doc compiler.LegacyTable
	if ext == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}

	st, err := compiler.ImportLegacy(doc)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return st, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// loadOrFail loads a table for commands that need a valid one, printing and
// mapping any failure to an exit code.
func loadOrFail(f *OutputFormatter, path string) (*table.Table, error) {
	tb, err := LoadTable(path)
	if err == nil {
		return tb, nil
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		var details interface{}
		if len(loadErr.Details) > 0 {
			details = loadErr.Details
		}
		return nil, fail(f, ExitCommandError, loadErr.Code, loadErr.describe(), details)
	}
	var invalid *table.ValidationFailedError
	if errors.As(err, &invalid) {
		return nil, fail(f, ExitFailure, invalid.Errors[0].Code, invalid.Error(), invalid.Errors)
	}
	return nil, fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// displayPath names a table path in output.
func displayPath(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}
