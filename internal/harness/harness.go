package harness

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// Harness runs scenarios against one table.
type Harness struct {
	table  *table.Table
	logger *zap.Logger
	seq    int64
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger used for per-check debug output.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario against tb and returns the result.
// A check failure is reported in the result; the error return is reserved
// for checks the harness cannot evaluate at all.
func Run(scenario *Scenario, tb *table.Table, opts ...Option) (*Result, error) {
	if tb == nil {
		return nil, fmt.Errorf("run %s: nil table", scenario.Name)
	}

	h := &Harness{table: tb, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}

	// Scenarios built in code skip LoadScenario, so check shapes here too.
	for i, c := range scenario.Checks {
		if err := validateCheck(c, i); err != nil {
			return nil, fmt.Errorf("run %s: %w", scenario.Name, err)
		}
	}

	result := NewResult()
	for i, c := range scenario.Checks {
		event, err := h.execute(c)
		if err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}

		if err := evaluateCheck(c, event); err != nil {
			event.Pass = false
			result.AddError(fmt.Sprintf("checks[%d]: %v", i, err))
		} else {
			event.Pass = true
		}
		result.Trace = append(result.Trace, event)

		h.logger.Debug("check evaluated",
			zap.String("scenario", scenario.Name),
			zap.Int("check", i),
			zap.String("op", c.Op),
			zap.Bool("pass", event.Pass),
		)
	}

	return result, nil
}

// execute performs the operation and records its outcome.
func (h *Harness) execute(c Check) (TraceEvent, error) {
	h.seq++
	event := TraceEvent{Seq: h.seq, Op: c.Op, Index: c.Index, Slot: c.Slot}

	var (
		value ir.IRValue
		err   error
	)
	switch c.Op {
	case OpSceneCount:
		value = ir.IRInt(h.table.SceneCount())
	case OpPrompts:
		value = ir.StringArray(h.table.Prompts())
	case OpChoices:
		value = ir.StringArray(h.table.Choices())
	case OpColorSlots:
		value = ir.StringArray(h.table.ColorSlots())
	case OpScene:
		var image string
		image, err = h.table.Scene(*c.Index)
		value = ir.IRString(image)
	case OpObjectSet:
		var labels []string
		labels, err = h.table.ObjectSet(*c.Index)
		value = ir.StringArray(labels)
	case OpChangeTarget:
		var obj ir.ObjectLabel
		obj, err = h.table.ChangeTarget(*c.Index)
		value = objectIR(obj)
	case OpObject:
		var objs []ir.ObjectLabel
		objs, err = h.table.Objects(*c.Index)
		if err == nil {
			var obj ir.ObjectLabel
			obj, err = objectAt(objs, *c.Slot)
			value = objectIR(obj)
		}
	default:
		return event, fmt.Errorf("unknown op %q", c.Op)
	}

	switch {
	case err == nil:
		event.Result = value
	case table.IsOutOfRange(err):
		event.Error = ErrKindOutOfRange
	default:
		return event, err
	}
	return event, nil
}

// objectAt returns the object in a color slot of one scene.
func objectAt(objs []ir.ObjectLabel, slot int) (ir.ObjectLabel, error) {
	if slot < 0 || slot >= len(objs) {
		return ir.ObjectLabel{}, &table.OutOfRangeError{Op: "Object", Index: slot, Count: len(objs), Of: "slot"}
	}
	return objs[slot], nil
}

// objectIR is the record shape used in expectations.
func objectIR(o ir.ObjectLabel) ir.IRObject {
	return ir.IRObject{
		"color":         ir.IRString(o.Color),
		"label":         ir.IRString(o.Label),
		"change_target": ir.IRBool(o.ChangeTarget),
	}
}

// convertToIRValue converts a YAML-parsed value to an IRValue.
// Returns an error for null values since they are forbidden in canonical JSON.
func convertToIRValue(val interface{}) (ir.IRValue, error) {
	if val == nil {
		return nil, fmt.Errorf("null values are forbidden in IR (canonical JSON does not support null)")
	}

	switch v := val.(type) {
	case string:
		return ir.IRString(v), nil
	case int:
		return ir.IRInt(int64(v)), nil
	case int64:
		return ir.IRInt(v), nil
	case float64:
		// Whole-number floats are accepted; fractional values are not
		if v == float64(int64(v)) {
			return ir.IRInt(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are forbidden in IR: %v", v)
	case bool:
		return ir.IRBool(v), nil
	case []interface{}:
		arr := make(ir.IRArray, len(v))
		for i, elem := range v {
			irElem, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]interface{}:
		obj := make(ir.IRObject, len(v))
		for key, elem := range v {
			irElem, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			obj[key] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
}
