package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/variants/internal/variant"
)

// Snapshot captures a scenario run for golden comparison. Barcodes are
// recorded as a validity flag only.
type Snapshot struct {
	ScenarioName string                `json:"scenario_name"`
	Trace        []TraceEvent          `json:"trace"`
	Final        []SnapshotCombination `json:"final"`
}

// SnapshotCombination is the golden rendering of one combination.
type SnapshotCombination struct {
	ID           string `json:"id"`
	Attributes   string `json:"attributes"`
	SKU          string `json:"sku"`
	Price        string `json:"price"`
	ComparePrice string `json:"compare_price"`
	Inventory    int64  `json:"inventory"`
	IsActive     bool   `json:"is_active"`
	BarcodeValid bool   `json:"barcode_valid"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	final := make([]SnapshotCombination, len(result.Final))
	for i, c := range result.Final {
		final[i] = SnapshotCombination{
			ID:           c.ID,
			Attributes:   c.Attributes.String(),
			SKU:          c.SKU,
			Price:        c.Price.String(),
			ComparePrice: c.ComparePrice.String(),
			Inventory:    c.Inventory,
			IsActive:     c.IsActive,
			BarcodeValid: variant.ValidBarcode(c.Barcode),
		}
	}
	return Snapshot{ScenarioName: name, Trace: result.Trace, Final: final}
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// GoldenPath returns the golden file for a scenario file:
// <dir>/golden/<base>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// CompareGolden reports whether the snapshot of result matches the file at
// path. A missing file returns os.ErrNotExist.
func CompareGolden(path, scenarioName string, result *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	got, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return false, err
	}
	return bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(got)), nil
}

// WriteGolden writes the snapshot of result to path, creating directories.
func WriteGolden(path, scenarioName string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
