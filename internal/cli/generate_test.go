package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/config"
)

func TestGenerateCommandText(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, "testdata/tee.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "   1  COL-RED-SIZ-S")
	assert.Contains(t, out, "Color: Blue / Size: M")
	assert.Contains(t, out, "4 combination(s)")
}

func TestGenerateCommandJSON(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(t, cmd, "testdata/tee.yaml")
	require.NoError(t, err)

	var result GenerateResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, result.Count)
	require.Len(t, result.Assignments, 4)

	skus := make([]string, len(result.Assignments))
	for i, a := range result.Assignments {
		skus[i] = a.SKU
	}
	assert.Equal(t, []string{"COL-RED-SIZ-S", "COL-RED-SIZ-M", "COL-BLU-SIZ-S", "COL-BLU-SIZ-M"}, skus)
}

func TestGenerateCommandMissingFile(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(t, cmd, "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, catalog.ErrCodeNotFound, resp.Error.Code)
}

func TestGenerateCommandDuplicateValue(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(t, cmd, "testdata/duplicate.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "DUPLICATE_VALUE")
}

func TestGenerateCommandLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Generate.MaxCombinations = 3

	cmd := NewGenerateCommand(&RootOptions{Format: "text", Config: cfg})
	out, _, err := execute(t, cmd, "testdata/tee.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "TOO_MANY_COMBINATIONS")
}

func TestGenerateCommandMissingArgs(t *testing.T) {
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
