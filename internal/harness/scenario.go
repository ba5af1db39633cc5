package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/variants/internal/variant"
)

// Scenario defines a scripted editing session.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Attributes is the initial attribute set. A regenerate step without its
	// own attributes uses it.
	Attributes variant.AttributeSet `yaml:"attributes,omitempty"`

	// Seed drives barcode synthesis. Zero selects testutil.DefaultSeed.
	Seed uint64 `yaml:"seed,omitempty"`

	// BarcodePrefix overrides variant.DefaultBarcodePrefix.
	BarcodePrefix string `yaml:"barcode_prefix,omitempty"`

	// MaxCombinations bounds every regenerate step. Zero means unlimited.
	MaxCombinations int `yaml:"max_combinations,omitempty"`

	// Steps run in order against a list that starts empty.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final list.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one editing action.
type Step struct {
	// Action is regenerate, bulk, search or filter.
	Action string `yaml:"action"`

	// Attributes replaces the attribute set (regenerate).
	Attributes variant.AttributeSet `yaml:"attributes,omitempty"`

	// IDs are the bulk targets (bulk).
	IDs []string `yaml:"ids,omitempty"`

	// Price is a decimal string (bulk).
	Price string `yaml:"price,omitempty"`

	// Inventory is the new on-hand count (bulk).
	Inventory *int64 `yaml:"inventory,omitempty"`

	// Query is the search text (search).
	Query string `yaml:"query,omitempty"`

	// Attribute and Value select the filter (filter).
	Attribute string `yaml:"attribute,omitempty"`
	Value     string `yaml:"value,omitempty"`

	// Expect checks the step outcome. If nil the step must not fail.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect specifies expected step outcomes. Nil fields are not checked.
type StepExpect struct {
	Count   *int `yaml:"count,omitempty"`
	Kept    *int `yaml:"kept,omitempty"`
	Created *int `yaml:"created,omitempty"`
	Dropped *int `yaml:"dropped,omitempty"`
	Updated *int `yaml:"updated,omitempty"`

	// Error is a substring the step's error must contain, usually an error
	// code such as DUPLICATE_VALUE. The list is unchanged after a failed step.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final list.
type Assertion struct {
	// Type is count, contains, absent, order or unique_barcodes.
	Type string `yaml:"type"`

	// Count is the expected list length (count).
	Count int `yaml:"count,omitempty"`

	// Where selects combinations by attribute value (contains, absent).
	// Subset match: listed attributes must match, others are ignored.
	Where map[string]string `yaml:"where,omitempty"`

	// Expect lists field values the match must have (contains). Keys: id,
	// sku, barcode, price, compare_price, weight, inventory, is_active.
	Expect map[string]string `yaml:"expect,omitempty"`

	// IDs is the expected ID order (order).
	IDs []string `yaml:"ids,omitempty"`
}

// Step actions.
const (
	ActionRegenerate = "regenerate"
	ActionBulk       = "bulk"
	ActionSearch     = "search"
	ActionFilter     = "filter"
)

// Assertion type constants.
const (
	AssertCount          = "count"
	AssertContains       = "contains"
	AssertAbsent         = "absent"
	AssertOrder          = "order"
	AssertUniqueBarcodes = "unique_barcodes"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
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
	if s.MaxCombinations < 0 {
		return fmt.Errorf("max_combinations must be non-negative")
	}
	if s.BarcodePrefix != "" {
		if err := variant.ValidateBarcodePrefix(s.BarcodePrefix); err != nil {
			return fmt.Errorf("barcode_prefix: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, s.Attributes != nil); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step, haveAttributes bool) error {
	switch step.Action {
	case ActionRegenerate:
		if step.Attributes == nil && !haveAttributes {
			return fmt.Errorf("steps[%d]: regenerate needs attributes (on the step or the scenario)", index)
		}
	case ActionBulk:
		if len(step.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids is required for bulk", index)
		}
		if step.Price == "" && step.Inventory == nil {
			return fmt.Errorf("steps[%d]: bulk needs price or inventory", index)
		}
	case ActionSearch:
	case ActionFilter:
		if step.Attribute == "" {
			return fmt.Errorf("steps[%d]: attribute is required for filter", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertContains:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for contains", index)
		}
		for key := range a.Expect {
			if !knownField(key) {
				return fmt.Errorf("assertions[%d]: unknown expect field %q", index, key)
			}
		}
	case AssertAbsent:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for absent", index)
		}
	case AssertOrder:
		if len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for order", index)
		}
	case AssertUniqueBarcodes:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
