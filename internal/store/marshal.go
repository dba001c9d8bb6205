package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/changeprob/internal/ir"
)

// marshalStrings converts a string list to canonical JSON TEXT for storage.
func marshalStrings(values []string) (string, error) {
	data, err := ir.MarshalCanonical(ir.StringArray(values))
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return string(data), nil
}

// marshalColors converts color slots to canonical JSON TEXT.
func marshalColors(colors []ir.ColorSlot) (string, error) {
	values := make([]string, len(colors))
	for i, c := range colors {
		values[i] = string(c)
	}
	return marshalStrings(values)
}

// marshalHIT converts HIT settings to JSON TEXT, or "" when absent.
// Uses json.Encoder with HTML escaping disabled so URLs are stored verbatim.
func marshalHIT(hit *ir.HITSpec) (string, error) {
	if hit == nil {
		return "", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(hit); err != nil {
		return "", fmt.Errorf("marshal hit: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalStrings parses a JSON TEXT array of strings.
func unmarshalStrings(data string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return values, nil
}

// unmarshalColors parses a JSON TEXT array of color slots.
func unmarshalColors(data string) ([]ir.ColorSlot, error) {
	values, err := unmarshalStrings(data)
	if err != nil {
		return nil, err
	}
	colors := make([]ir.ColorSlot, len(values))
	for i, v := range values {
		colors[i] = ir.ColorSlot(v)
	}
	return colors, nil
}

// unmarshalHIT parses HIT JSON TEXT. "" means no HIT.
func unmarshalHIT(data string) (*ir.HITSpec, error) {
	if data == "" {
		return nil, nil
	}
	var hit ir.HITSpec
	if err := json.Unmarshal([]byte(data), &hit); err != nil {
		return nil, fmt.Errorf("unmarshal hit: %w", err)
	}
	return &hit, nil
}
