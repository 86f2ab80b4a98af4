package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted admin/customer session run against a fresh
// namespace, followed by assertions on the trace and the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed selects the first-run data: "builtin" (default), "empty", or a
	// path to a CUE seed file relative to the scenario file.
	Seed string `yaml:"seed,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one operation.
type Step struct {
	// Op names the operation, e.g. "items.add" or "selection.toggle".
	Op string `yaml:"op"`

	// Args are the operation arguments.
	Args map[string]interface{} `yaml:"args"`

	// Expect checks the outcome. When nil the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is "ok" or an error kind such as "not_found" or "validation".
	Outcome string `yaml:"outcome"`

	// Result is a subset match against the step result (e.g. {id: 9}).
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op and Args are used by trace_contains and trace_count.
	Op   string                 `yaml:"op,omitempty"`
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Ops is the expected order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number (trace_count, item_count, category_count, option_count).
	Count int `yaml:"count"`

	// ID addresses a dish (selection_quantity, item_category).
	ID int64 `yaml:"id,omitempty"`

	// Category filters item_count, or is the expected category of item_category.
	Category string `yaml:"category,omitempty"`

	// Size is the party size of option_count.
	Size int `yaml:"size,omitempty"`

	// Quantity is the expected selection quantity; 0 means not saved.
	Quantity int `yaml:"quantity"`

	// Total is the expected selection total.
	Total float64 `yaml:"total"`
}

// Assertion type constants.
const (
	AssertTraceContains     = "trace_contains"
	AssertTraceOrder        = "trace_order"
	AssertTraceCount        = "trace_count"
	AssertItemCount         = "item_count"
	AssertCategoryCount     = "category_count"
	AssertSelectionQuantity = "selection_quantity"
	AssertSelectionTotal    = "selection_total"
	AssertOptionCount       = "option_count"
	AssertItemCategory      = "item_category"
)

// Seed names accepted besides a file path.
const (
	SeedBuiltin = "builtin"
	SeedEmpty   = "empty"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A seed file path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if isSeedFile(scenario.Seed) && !filepath.IsAbs(scenario.Seed) {
		scenario.Seed = filepath.Join(filepath.Dir(path), scenario.Seed)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
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

func isSeedFile(seed string) bool {
	return seed != "" && seed != SeedBuiltin && seed != SeedEmpty
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if _, ok := operations[step.Op]; !ok {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("steps[%d].expect: outcome is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertItemCount, AssertCategoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertOptionCount:
		if a.Size == 0 {
			return fmt.Errorf("assertions[%d]: size is required for option_count", index)
		}
	case AssertSelectionQuantity:
		if a.ID == 0 {
			return fmt.Errorf("assertions[%d]: id is required for selection_quantity", index)
		}
	case AssertItemCategory:
		if a.ID == 0 || a.Category == "" {
			return fmt.Errorf("assertions[%d]: id and category are required for item_category", index)
		}
	case AssertSelectionTotal:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
