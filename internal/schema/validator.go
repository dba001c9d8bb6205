// Package schema checks legacy parallel-array scene tables against their
// embedded JSON Schema before they are imported.
package schema

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/roach88/changeprob/internal/assets"
)

// ValidationError represents a single schema violation.
type ValidationError struct {
	Path    string `json:"path,omitempty"` // Dotted path, e.g. "all_objects.0.2"
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	legacyOnce   sync.Once
	legacySchema *gojsonschema.Schema
	legacyErr    error
)

func loadLegacySchema() (*gojsonschema.Schema, error) {
	legacyOnce.Do(func() {
		data, err := assets.Read(assets.LegacyTableSchema)
		if err != nil {
			legacyErr = err
			return
		}
		legacySchema, legacyErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if legacyErr != nil {
			legacyErr = fmt.Errorf("compile %s: %w", assets.LegacyTableSchema, legacyErr)
		}
	})
	return legacySchema, legacyErr
}

// ValidateLegacy checks a YAML or JSON document against the legacy table
// schema. JSON is valid YAML, so both go through the YAML decoder.
// A parse failure is returned as an error; schema violations are in Result.
func ValidateLegacy(doc []byte) (*Result, error) {
	var data interface{}
	if err := yaml.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return Validate(data)
}

// Validate checks already-decoded data against the legacy table schema.
func Validate(data interface{}) (*Result, error) {
	schema, err := loadLegacySchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	res := &Result{Valid: result.Valid()}
	if !result.Valid() {
		for _, verr := range result.Errors() {
			field := verr.Field()
			if field == "" || field == "(root)" {
				field = "root"
			}
			res.Errors = append(res.Errors, ValidationError{
				Path:    field,
				Message: verr.Description(),
			})
		}
	}

	return res, nil
}
