package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/variants/internal/variant"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func colorSize() variant.AttributeSet {
	return variant.AttributeSet{
		{Name: "Color", Values: []string{"Red", "Blue"}},
		{Name: "Size", Values: []string{"S", "M"}},
	}
}

func TestRun_TeeLifecycleGolden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "tee_lifecycle.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, len(scenario.Steps))
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "same seed, same list",
		Attributes:  colorSize(),
		Steps:       []Step{{Action: ActionRegenerate}},
		Assertions:  []Assertion{{Type: AssertCount, Count: 4}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Final, second.Final)
	assert.Equal(t, "var-0001", first.Final[0].ID)
}

func TestRun_SeedChangesBarcodesOnly(t *testing.T) {
	base := &Scenario{
		Name:        "seed",
		Description: "seed drives barcodes",
		Attributes:  colorSize(),
		Steps:       []Step{{Action: ActionRegenerate}},
		Assertions:  []Assertion{{Type: AssertUniqueBarcodes}},
	}
	other := *base
	other.Seed = 99

	a, err := Run(base)
	require.NoError(t, err)
	b, err := Run(&other)
	require.NoError(t, err)

	require.True(t, a.Pass)
	require.True(t, b.Pass)
	for i := range a.Final {
		assert.Equal(t, a.Final[i].ID, b.Final[i].ID)
		assert.Equal(t, a.Final[i].SKU, b.Final[i].SKU)
	}
	assert.NotEqual(t, a.Final[0].Barcode, b.Final[0].Barcode)
}

func TestRun_UnexpectedStepErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_attrs",
		Description: "duplicate attribute without expectation",
		Attributes: variant.AttributeSet{
			{Name: "Color", Values: []string{"Red"}},
			{Name: "Color", Values: []string{"Blue"}},
		},
		Steps:      []Step{{Action: ActionRegenerate}},
		Assertions: []Assertion{{Type: AssertCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "DUPLICATE_ATTRIBUTE")
	assert.Contains(t, result.Trace[0].Error, "DUPLICATE_ATTRIBUTE")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_error",
		Description: "expects an error that never happens",
		Attributes:  colorSize(),
		Steps: []Step{{
			Action: ActionRegenerate,
			Expect: &StepExpect{Error: "DUPLICATE_VALUE"},
		}},
		Assertions: []Assertion{{Type: AssertCount, Count: 4}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "got success")
}

func TestRun_StepCountMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "count_mismatch",
		Description: "wrong created count",
		Attributes:  colorSize(),
		Steps: []Step{{
			Action: ActionRegenerate,
			Expect: &StepExpect{Created: intPtr(3)},
		}},
		Assertions: []Assertion{{Type: AssertCount, Count: 4}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"steps[0] (regenerate): expected created 3, got 4"}, result.Errors)
}

func TestRun_MaxCombinations(t *testing.T) {
	scenario := &Scenario{
		Name:            "limit",
		Description:     "product too large",
		Attributes:      colorSize(),
		MaxCombinations: 3,
		Steps: []Step{{
			Action: ActionRegenerate,
			Expect: &StepExpect{Error: "TOO_MANY_COMBINATIONS", Count: intPtr(0)},
		}},
		Assertions: []Assertion{{Type: AssertCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BulkInventoryOnly(t *testing.T) {
	scenario := &Scenario{
		Name:        "inventory",
		Description: "inventory-only patch",
		Attributes:  colorSize(),
		Steps: []Step{
			{Action: ActionRegenerate},
			{Action: ActionBulk, IDs: []string{"var-0002"}, Inventory: int64Ptr(12), Expect: &StepExpect{Updated: intPtr(1)}},
		},
		Assertions: []Assertion{
			{Type: AssertContains, Where: map[string]string{"Size": "M", "Color": "Red"}, Expect: map[string]string{"inventory": "12", "price": "0.00"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_InvalidBarcodePrefix(t *testing.T) {
	scenario := &Scenario{BarcodePrefix: "abc"}
	_, err := Run(scenario)
	require.Error(t, err)
}

func TestRun_LogsSteps(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	scenario := &Scenario{
		Name:        "logged",
		Description: "debug logging",
		Attributes:  colorSize(),
		Steps:       []Step{{Action: ActionRegenerate}, {Action: ActionSearch, Query: "red"}},
		Assertions:  []Assertion{{Type: AssertCount, Count: 4}},
	}

	_, err := Run(scenario, WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, 2, logs.FilterMessage("step executed").Len())
	assert.Equal(t, 1, logs.FilterMessage("scenario finished").Len())
}

func TestWriteAndCompareGolden(t *testing.T) {
	scenario := &Scenario{
		Name:        "roundtrip",
		Description: "golden round trip",
		Attributes:  colorSize(),
		Steps:       []Step{{Action: ActionRegenerate}},
		Assertions:  []Assertion{{Type: AssertCount, Count: 4}},
	}
	result, err := Run(scenario)
	require.NoError(t, err)

	path := GoldenPath(filepath.Join(t.TempDir(), "roundtrip.yaml"))
	_, err = CompareGolden(path, scenario.Name, result)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, WriteGolden(path, scenario.Name, result))
	match, err := CompareGolden(path, scenario.Name, result)
	require.NoError(t, err)
	assert.True(t, match)

	result.Final[0].Price = decimal.NewFromInt(1)
	match, err = CompareGolden(path, scenario.Name, result)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "tee.golden"), GoldenPath(filepath.Join("scenarios", "tee.yaml")))
}
