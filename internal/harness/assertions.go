package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/changeprob/internal/ir"
)

// AssertionError is returned when a check does not match.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Op       string // Operation for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Diff     string // cmp.Diff output (-want +got), empty for error mismatches
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "check failed: %s\n", e.Op)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "  Diff (-want +got):\n%s", e.Diff)
	}

	return buf.String()
}

// evaluateCheck compares a recorded event with the check's expectation.
func evaluateCheck(c Check, event TraceEvent) error {
	if c.Error != "" {
		if event.Error == c.Error {
			return nil
		}
		return &AssertionError{
			Op:       c.Op,
			Expected: fmt.Sprintf("error %s", c.Error),
			Actual:   describe(event),
		}
	}

	if event.Error != "" {
		return &AssertionError{
			Op:       c.Op,
			Expected: "a value",
			Actual:   describe(event),
		}
	}

	want, err := expectedValue(c)
	if err != nil {
		return fmt.Errorf("expectation: %w", err)
	}

	if diff := cmp.Diff(want, event.Result); diff != "" {
		return &AssertionError{
			Op:       c.Op,
			Expected: formatValue(want),
			Actual:   formatValue(event.Result),
			Diff:     diff,
		}
	}
	return nil
}

// expectedValue converts the YAML expectation to the IR shape the
// operations produce.
func expectedValue(c Check) (ir.IRValue, error) {
	if c.ExpectList != nil {
		return ir.StringArray(c.ExpectList), nil
	}
	return convertToIRValue(c.Expect)
}

func describe(event TraceEvent) string {
	if event.Error != "" {
		return "error " + event.Error
	}
	return formatValue(event.Result)
}

// formatValue renders a value as canonical JSON for messages.
func formatValue(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
