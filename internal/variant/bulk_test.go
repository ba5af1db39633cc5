package variant

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func qty(n int64) *int64 {
	return &n
}

func bulkFixture() []Combination {
	return []Combination{
		{ID: "A", Attributes: NewAssignment("Color", "Red"), Price: decimal.RequireFromString("5"), Inventory: 1, SKU: "COL-RED"},
		{ID: "B", Attributes: NewAssignment("Color", "Blue"), Price: decimal.RequireFromString("6"), Inventory: 2, SKU: "COL-BLU"},
		{ID: "C", Attributes: NewAssignment("Color", "Green"), Price: decimal.RequireFromString("7"), Inventory: 3, SKU: "COL-GRE"},
	}
}

func TestApplyBulkUpdate_TargetsOnly(t *testing.T) {
	combos := bulkFixture()

	got, err := ApplyBulkUpdate(combos, []string{"A", "C"}, Patch{Price: price("9.99")})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, got[2].Price.Equal(decimal.RequireFromString("9.99")))
	if diff := cmp.Diff(combos[1], got[1]); diff != "" {
		t.Errorf("untargeted combination changed (-want +got):\n%s", diff)
	}

	// Inventory untouched when not patched.
	assert.Equal(t, int64(1), got[0].Inventory)
	assert.Equal(t, int64(3), got[2].Inventory)
}

func TestApplyBulkUpdate_ZeroIsNoOp(t *testing.T) {
	combos := bulkFixture()

	got, err := ApplyBulkUpdate(combos[:1], []string{"A"}, Patch{Price: price("0"), Inventory: qty(0)})
	require.NoError(t, err)

	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("5")))
	assert.Equal(t, int64(1), got[0].Inventory)
}

func TestApplyBulkUpdate_InventoryOnly(t *testing.T) {
	got, err := ApplyBulkUpdate(bulkFixture(), []string{"B"}, Patch{Inventory: qty(40)})
	require.NoError(t, err)

	assert.Equal(t, int64(40), got[1].Inventory)
	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("6")))
}

func TestApplyBulkUpdate_PreservesOrderAndIdentity(t *testing.T) {
	combos := bulkFixture()
	got, err := ApplyBulkUpdate(combos, []string{"C", "A", "B"}, Patch{Price: price("1"), Inventory: qty(1)})
	require.NoError(t, err)

	for i := range combos {
		assert.Equal(t, combos[i].ID, got[i].ID)
		assert.True(t, combos[i].Attributes.Equal(got[i].Attributes))
		assert.Equal(t, combos[i].SKU, got[i].SKU)
	}
}

func TestApplyBulkUpdate_RejectsNegativeBeforeApplying(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		field string
	}{
		{"negative price", Patch{Price: price("-1"), Inventory: qty(10)}, "price"},
		{"negative inventory", Patch{Price: price("10"), Inventory: qty(-3)}, "inventory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos := bulkFixture()
			snapshot := cloneAll(combos)

			got, err := ApplyBulkUpdate(combos, []string{"A", "B", "C"}, tt.patch)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, IsMalformedPatch(err))

			var pe *MalformedPatchError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)

			assert.Equal(t, snapshot, combos)
		})
	}
}

func TestApplyBulkUpdate_UnknownTargetsIgnored(t *testing.T) {
	combos := bulkFixture()

	report, err := ApplyBulkUpdateReport(combos, []string{"A", "ghost", "zombie"}, Patch{Inventory: qty(8)})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"ghost", "zombie"}, report.Unknown)
	assert.Equal(t, int64(8), report.Combinations[0].Inventory)

	uerr := report.UnknownErr()
	require.Error(t, uerr)
	assert.True(t, IsUnknownTarget(uerr))
	assert.Contains(t, uerr.Error(), "ghost")
}

func TestApplyBulkUpdate_NoUnknownTargets(t *testing.T) {
	report, err := ApplyBulkUpdateReport(bulkFixture(), []string{"A"}, Patch{})
	require.NoError(t, err)
	assert.Empty(t, report.Unknown)
	assert.NoError(t, report.UnknownErr())
}

func TestApplyBulkUpdate_DoesNotMutateInput(t *testing.T) {
	combos := bulkFixture()
	snapshot := cloneAll(combos)

	_, err := ApplyBulkUpdate(combos, []string{"A", "B", "C"}, Patch{Price: price("99"), Inventory: qty(99)})
	require.NoError(t, err)
	assert.Equal(t, snapshot, combos)
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.True(t, Patch{Price: price("0"), Inventory: qty(0)}.Empty())
	assert.False(t, Patch{Price: price("0.01")}.Empty())
	assert.False(t, Patch{Inventory: qty(1)}.Empty())
}
