package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/variants/internal/variant"
)

func teeAttributes() variant.AttributeSet {
	return variant.AttributeSet{
		{Name: "Color", Values: []string{"Red", "Blue"}},
		{Name: "Size", Values: []string{"S", "M"}},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAttributes_AllFormatsAgree(t *testing.T) {
	for _, name := range []string{"tee.cue", "tee.yaml", "tee.json"} {
		t.Run(name, func(t *testing.T) {
			attrs, err := LoadAttributes(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, teeAttributes(), attrs)
		})
	}
}

func TestLoadAttributes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    string
	}{
		{"unsupported extension", "attrs.txt", "Color: Red", ErrCodeFormat},
		{"cue syntax", "attrs.cue", "attributes: [", ErrCodeSyntax},
		{"cue blank value", "attrs.cue", `attributes: [{name: "Color", values: [""]}]`, ErrCodeSchema},
		{"cue unknown field", "attrs.cue", `attributes: []
extra: 1`, ErrCodeSchema},
		{"cue duplicate value", "attrs.cue", `attributes: [{name: "Color", values: ["Red", "Red"]}]`, ErrCodeAttributes},
		{"yaml unknown key", "attrs.yaml", "attributes: []\ncolour: red\n", ErrCodeSyntax},
		{"yaml duplicate attribute", "attrs.yaml", "attributes:\n  - {name: Color, values: [Red]}\n  - {name: Color, values: [Blue]}\n", ErrCodeAttributes},
		{"json unknown key", "attrs.json", `{"attributes": [], "extra": true}`, ErrCodeSyntax},
		{"json blank name", "attrs.json", `{"attributes": [{"name": " ", "values": ["x"]}]}`, ErrCodeAttributes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAttributes(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, IsLoadError(err, tt.code), "want %s, got %v", tt.code, err)
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestLoadAttributes_MissingFile(t *testing.T) {
	_, err := LoadAttributes(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeNotFound))
}

func TestLoadAttributes_EngineErrorUnwraps(t *testing.T) {
	_, err := DecodeAttributesJSON([]byte(`{"attributes": [{"name": "Size", "values": ["S", "S"]}]}`))
	require.Error(t, err)
	assert.True(t, variant.HasCode(err, variant.ErrCodeDuplicateValue))
}

func TestDecodeAttributesYAML_EmptyDocument(t *testing.T) {
	attrs, err := DecodeAttributesYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestLoadCombinations_Fixture(t *testing.T) {
	combos, err := LoadCombinations(filepath.Join("testdata", "combinations.json"))
	require.NoError(t, err)
	require.Len(t, combos, 2)

	first := combos[0]
	assert.Equal(t, "var-0001", first.ID)
	assert.True(t, first.Attributes.Equal(variant.NewAssignment("Color", "Red", "Size", "S")))
	assert.True(t, first.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(5), first.Inventory)
	assert.True(t, variant.ValidBarcode(first.Barcode))
}

func TestLoadCombinations_MissingIsEmpty(t *testing.T) {
	combos, err := LoadCombinations(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.NotNil(t, combos)
	assert.Empty(t, combos)
}

func TestDecodeCombinations_WrappedForm(t *testing.T) {
	combos, err := DecodeCombinations([]byte(`{"combinations": [{"id": "a", "attributes": [{"name": "Size", "value": "S"}]}]}`))
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Equal(t, "a", combos[0].ID)
}

func TestDecodeCombinations_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax", `[{"id": }]`, ErrCodeSyntax},
		{"missing id", `[{"price": "1"}]`, ErrCodeCombination},
		{"negative price", `[{"id": "a", "price": "-1"}]`, ErrCodeCombination},
		{"negative inventory", `[{"id": "a", "inventory": -3}]`, ErrCodeCombination},
		{"negative weight", `[{"id": "a", "weight": "-0.5"}]`, ErrCodeCombination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCombinations([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, IsLoadError(err, tt.code), "got %v", err)
		})
	}
}

func TestWriteCombinations_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCombinations(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCombinations_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	combos := []variant.Combination{{ID: "a", Attributes: variant.NewAssignment("Finish", "Matte & Gloss")}}
	require.NoError(t, WriteCombinations(&buf, combos))
	assert.Contains(t, buf.String(), "Matte & Gloss")
}

func TestSaveCombinations_RoundTrip(t *testing.T) {
	r := variant.NewReconciler()
	combos, _, err := r.Regenerate(teeAttributes(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, SaveCombinations(path, combos))

	loaded, err := LoadCombinations(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(combos))
	for i := range combos {
		assert.Equal(t, combos[i].ID, loaded[i].ID)
		assert.True(t, combos[i].Attributes.Equal(loaded[i].Attributes))
		assert.Equal(t, combos[i].Barcode, loaded[i].Barcode)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}
