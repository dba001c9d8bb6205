package table

import (
	"fmt"

	"github.com/roach88/changeprob/internal/compiler"
	"github.com/roach88/changeprob/internal/ir"
)

// Table is a validated, read-only scene configuration.
type Table struct {
	t    *ir.SceneTable
	hash string
}

// New validates t and returns a Table over a private copy of it.
// Returns *ValidationFailedError listing every violated invariant.
func New(t *ir.SceneTable) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("table.New: nil scene table")
	}
	if errs := compiler.Validate(t); len(errs) > 0 {
		return nil, &ValidationFailedError{Errors: errs}
	}

	cp := t.Clone()
	hash, err := ir.TableHash(cp)
	if err != nil {
		return nil, fmt.Errorf("table.New: %w", err)
	}
	return &Table{t: cp, hash: hash}, nil
}

// Name returns the table name.
func (tb *Table) Name() string {
	return tb.t.Name
}

// Hash returns the content hash of the table (ir.TableHash).
func (tb *Table) Hash() string {
	return tb.hash
}

// Prompts returns the three prompt texts, shortest horizon first.
func (tb *Table) Prompts() []string {
	out := make([]string, len(tb.t.Prompts))
	for i, p := range tb.t.Prompts {
		out[i] = p.Text
	}
	return out
}

// PromptRecords returns the prompts with their horizons.
func (tb *Table) PromptRecords() []ir.Prompt {
	return append([]ir.Prompt(nil), tb.t.Prompts...)
}

// Choices returns the response scale "1".."10".
func (tb *Table) Choices() []string {
	return append([]string(nil), tb.t.Choices...)
}

// SceneCount returns the number of scenes.
func (tb *Table) SceneCount() int {
	return len(tb.t.Scenes)
}

// Scene returns the image name of scene i.
func (tb *Table) Scene(i int) (string, error) {
	if err := tb.check("Scene", i); err != nil {
		return "", err
	}
	return tb.t.Scenes[i].Image, nil
}

// ObjectSet returns the labels of scene i aligned to ColorSlots, as the
// browser harness reads them: the change target carries the "_CHANGE" suffix.
func (tb *Table) ObjectSet(i int) ([]string, error) {
	if err := tb.check("ObjectSet", i); err != nil {
		return nil, err
	}
	objs := tb.t.Scenes[i].Objects
	out := make([]string, len(objs))
	for j, o := range objs {
		out[j] = o.DisplayLabel()
	}
	return out, nil
}

// Objects returns the object records of scene i.
func (tb *Table) Objects(i int) ([]ir.ObjectLabel, error) {
	if err := tb.check("Objects", i); err != nil {
		return nil, err
	}
	return append([]ir.ObjectLabel(nil), tb.t.Scenes[i].Objects...), nil
}

// ChangeTarget returns the single object of scene i marked as changing.
func (tb *Table) ChangeTarget(i int) (ir.ObjectLabel, error) {
	if err := tb.check("ChangeTarget", i); err != nil {
		return ir.ObjectLabel{}, err
	}
	s := tb.t.Scenes[i]
	// New guarantees exactly one.
	return s.Objects[s.ChangeTargets()[0]], nil
}

// ColorSlots returns the five slot colors in slot order.
func (tb *Table) ColorSlots() []string {
	out := make([]string, len(tb.t.Colors))
	for i, c := range tb.t.Colors {
		out[i] = string(c)
	}
	return out
}

// HIT returns a copy of the crowd-sourcing settings, or nil.
func (tb *Table) HIT() *ir.HITSpec {
	if tb.t.HIT == nil {
		return nil
	}
	return tb.IR().HIT
}

// IR returns a deep copy of the underlying records.
func (tb *Table) IR() *ir.SceneTable {
	return tb.t.Clone()
}

func (tb *Table) check(op string, i int) error {
	if i < 0 || i >= len(tb.t.Scenes) {
		return &OutOfRangeError{Op: op, Index: i, Count: len(tb.t.Scenes)}
	}
	return nil
}
