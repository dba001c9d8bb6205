package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/changeprob/internal/assets"
	"github.com/roach88/changeprob/internal/ir"
)

// CompileTable parses a CUE value into a SceneTable.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value is unified with the embedded #SceneTable definition first, so
// unknown fields, bad colors and malformed image names are reported with CUE
// source positions. Counts and alignment are left to Validate.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileBytes(src, cue.Filename("boxed_scenes.cue"))
//	table, err := CompileTable(v)
func CompileTable(v cue.Value) (*ir.SceneTable, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def, err := definition(v.Context(), "#SceneTable")
	if err != nil {
		return nil, err
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	table := &ir.SceneTable{}

	table.Name, err = lookupString(unified, "name")
	if err != nil {
		return nil, err
	}

	table.Prompts, err = parsePrompts(unified)
	if err != nil {
		return nil, err
	}

	table.Choices, err = lookupStrings(unified, "choices")
	if err != nil {
		return nil, err
	}

	colors, err := lookupStrings(unified, "colors")
	if err != nil {
		return nil, err
	}
	for _, c := range colors {
		table.Colors = append(table.Colors, ir.ColorSlot(c))
	}

	table.Scenes, err = parseScenes(unified)
	if err != nil {
		return nil, err
	}

	// hit is optional
	hitVal := unified.LookupPath(cue.ParsePath("hit"))
	if hitVal.Exists() {
		table.HIT, err = decodeHIT(hitVal)
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// CompileHIT parses a standalone CUE value into a HITSpec.
func CompileHIT(v cue.Value) (*ir.HITSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def, err := definition(v.Context(), "#HIT")
	if err != nil {
		return nil, err
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	return decodeHIT(unified)
}

// definition compiles the embedded schema in ctx and returns the named
// definition. Values from different contexts cannot be unified, so the schema
// is compiled against the caller's context every time.
func definition(ctx *cue.Context, name string) (cue.Value, error) {
	schema := ctx.CompileBytes(assets.MustRead(assets.TableSchemaCUE), cue.Filename(assets.TableSchemaCUE))
	if err := schema.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath(name))
	if !def.Exists() {
		return cue.Value{}, &CompileError{
			Field:   "schema",
			Message: fmt.Sprintf("definition %s not found in embedded schema", name),
		}
	}
	return def, nil
}

// parsePrompts extracts the ordered prompt records.
func parsePrompts(v cue.Value) ([]ir.Prompt, error) {
	var prompts []ir.Prompt

	iter, err := v.LookupPath(cue.ParsePath("prompts")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		pv := iter.Value()

		horizon, err := lookupString(pv, "horizon")
		if err != nil {
			return nil, err
		}
		text, err := lookupString(pv, "text")
		if err != nil {
			return nil, err
		}

		prompts = append(prompts, ir.Prompt{Horizon: horizon, Text: text})
	}

	return prompts, nil
}

// parseScenes extracts scenes and their object records.
func parseScenes(v cue.Value) ([]ir.Scene, error) {
	var scenes []ir.Scene

	iter, err := v.LookupPath(cue.ParsePath("scenes")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		sv := iter.Value()

		image, err := lookupString(sv, "image")
		if err != nil {
			return nil, err
		}
		scene := ir.Scene{Image: image}

		objIter, err := sv.LookupPath(cue.ParsePath("objects")).List()
		if err != nil {
			return nil, formatCUEError(err)
		}

		for objIter.Next() {
			ov := objIter.Value()

			color, err := lookupString(ov, "color")
			if err != nil {
				return nil, err
			}
			label, err := lookupString(ov, "label")
			if err != nil {
				return nil, err
			}
			change, err := ov.LookupPath(cue.ParsePath("change")).Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}

			scene.Objects = append(scene.Objects, ir.ObjectLabel{
				Color:        ir.ColorSlot(color),
				Label:        label,
				ChangeTarget: change,
			})
		}

		scenes = append(scenes, scene)
	}

	return scenes, nil
}

// decodeHIT decodes a HIT block. Field names match the ir json tags.
func decodeHIT(v cue.Value) (*ir.HITSpec, error) {
	var hit ir.HITSpec
	if err := v.Decode(&hit); err != nil {
		return nil, formatCUEError(err)
	}
	return &hit, nil
}

// lookupString returns a required string field.
func lookupString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// lookupStrings returns a list of strings.
func lookupStrings(v cue.Value, field string) ([]string, error) {
	var out []string

	iter, err := v.LookupPath(cue.ParsePath(field)).List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
