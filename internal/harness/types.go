package harness

import "github.com/roach88/changeprob/internal/ir"

// TraceEvent records one executed check.
type TraceEvent struct {
	Seq    int64      `json:"seq"`
	Op     string     `json:"op"`
	Index  *int       `json:"index,omitempty"`
	Slot   *int       `json:"slot,omitempty"`
	Result ir.IRValue `json:"result,omitempty"` // nil when the operation failed
	Error  string     `json:"error,omitempty"`  // error kind, e.g. "out_of_range"
	Pass   bool       `json:"pass"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all checks match.
	Pass bool `json:"pass"`

	// Trace contains one event per check, in scenario order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains check failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
