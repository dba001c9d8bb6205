package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/changeprob/internal/compiler"
)

// ErrOutOfRange is matched by every *OutOfRangeError via errors.Is.
var ErrOutOfRange = errors.New("index out of range")

// OutOfRangeError reports an index outside [0, Count).
type OutOfRangeError struct {
	// Op names the accessor that was called, e.g. "Scene".
	Op string

	// Index is the requested index.
	Index int

	// Count is the number of valid positions.
	Count int

	// Of names what Count counts; empty means "scene".
	Of string
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	of := e.Of
	if of == "" {
		of = "scene"
	}
	return fmt.Sprintf("%s(%d): %s (%s count %d)", e.Op, e.Index, ErrOutOfRange, of, e.Count)
}

// Is reports whether target is ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// IsOutOfRange returns true if err is an out-of-range error.
// Uses errors.Is to handle wrapped errors.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// ValidationFailedError is returned by New when the table breaks one or more
// invariants. Errors holds every violation, in validation order.
type ValidationFailedError struct {
	Errors []compiler.ValidationError
}

// Error implements the error interface.
func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid scene table: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid scene table: %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Codes returns the distinct error codes, in first-seen order.
func (e *ValidationFailedError) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, ve := range e.Errors {
		if !seen[ve.Code] {
			seen[ve.Code] = true
			codes = append(codes, ve.Code)
		}
	}
	return codes
}
