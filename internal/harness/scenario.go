package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is the path of the table under test (.cue, .yaml, .yml, .json).
	// Empty means the embedded default table.
	Table string `yaml:"table,omitempty"`

	// Checks run in order against the table.
	Checks []Check `yaml:"checks"`
}

// Check is one read operation and its expected outcome.
// Exactly one of Expect, ExpectList and Error must be set.
type Check struct {
	// Op is the operation, one of the Op* constants.
	Op string `yaml:"op"`

	// Index is the scene index (scene, object_set, object, change_target).
	Index *int `yaml:"index,omitempty"`

	// Slot is the color slot within the scene (object).
	Slot *int `yaml:"slot,omitempty"`

	// Expect is the expected scalar or record value.
	Expect interface{} `yaml:"expect,omitempty"`

	// ExpectList is the expected list value.
	ExpectList []string `yaml:"expect_list,omitempty"`

	// Error is the expected error kind.
	Error string `yaml:"error,omitempty"`
}

// Check operations.
const (
	OpSceneCount   = "scene_count"
	OpScene        = "scene"
	OpObjectSet    = "object_set"
	OpObject       = "object"
	OpChangeTarget = "change_target"
	OpPrompts      = "prompts"
	OpChoices      = "choices"
	OpColorSlots   = "color_slots"
)

// ErrKindOutOfRange is the only error kind a check can expect.
const ErrKindOutOfRange = "out_of_range"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative table path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the table path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Table != "" && !filepath.IsAbs(scenario.Table) && basePath != "" {
		scenario.Table = filepath.Join(basePath, scenario.Table)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and check shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("at least one check is required")
	}
	for i, c := range s.Checks {
		if err := validateCheck(c, i); err != nil {
			return err
		}
	}
	return nil
}

// validateCheck validates a single check.
func validateCheck(c Check, index int) error {
	switch c.Op {
	case OpSceneCount, OpPrompts, OpChoices, OpColorSlots:
		if c.Index != nil || c.Slot != nil {
			return fmt.Errorf("checks[%d]: %s takes no index or slot", index, c.Op)
		}
	case OpScene, OpObjectSet, OpChangeTarget:
		if c.Index == nil {
			return fmt.Errorf("checks[%d]: index is required for %s", index, c.Op)
		}
		if c.Slot != nil {
			return fmt.Errorf("checks[%d]: %s takes no slot", index, c.Op)
		}
	case OpObject:
		if c.Index == nil || c.Slot == nil {
			return fmt.Errorf("checks[%d]: index and slot are required for object", index)
		}
	case "":
		return fmt.Errorf("checks[%d]: op is required", index)
	default:
		return fmt.Errorf("checks[%d]: unknown op %q", index, c.Op)
	}

	set := 0
	if c.Expect != nil {
		set++
	}
	if c.ExpectList != nil {
		set++
	}
	if c.Error != "" {
		set++
		if c.Error != ErrKindOutOfRange {
			return fmt.Errorf("checks[%d]: unknown error kind %q", index, c.Error)
		}
	}
	if set != 1 {
		return fmt.Errorf("checks[%d]: exactly one of expect, expect_list or error is required", index)
	}
	return nil
}
