package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	TableHash    string       `json:"table_hash"`
	Trace        []TraceEvent `json:"trace"`
}

// toIR converts the snapshot for ir.MarshalCanonical.
func (s *TraceSnapshot) toIR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.IRObject{
			"seq":  ir.IRInt(event.Seq),
			"op":   ir.IRString(event.Op),
			"pass": ir.IRBool(event.Pass),
		}
		if event.Index != nil {
			obj["index"] = ir.IRInt(int64(*event.Index))
		}
		if event.Slot != nil {
			obj["slot"] = ir.IRInt(int64(*event.Slot))
		}
		if event.Result != nil {
			obj["result"] = event.Result
		}
		if event.Error != "" {
			obj["error"] = ir.IRString(event.Error)
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"table_hash":    ir.IRString(s.TableHash),
		"trace":         trace,
	}
}

// MarshalSnapshot returns the canonical JSON snapshot of a run.
func MarshalSnapshot(scenarioName string, tb *table.Table, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		TableHash:    tb.Hash(),
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, tb *table.Table) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, tb)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, tb, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, tb *table.Table, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalSnapshot(scenarioName, tb, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
