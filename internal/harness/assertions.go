package harness

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/variants/internal/variant"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string                // Assertion type for categorization
	Expected string                // Human-readable expected outcome
	Actual   string                // Human-readable actual outcome
	Final    []variant.Combination // Final list for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal combinations:\n")
	for i, c := range e.Final {
		fmt.Fprintf(&buf, "  [%d] %s %s sku=%s price=%s inventory=%d\n",
			i+1, c.ID, c.Attributes, c.SKU, c.Price, c.Inventory)
	}
	return buf.String()
}

// knownField reports whether key can appear in a contains expectation.
func knownField(key string) bool {
	switch key {
	case "id", "sku", "barcode", "price", "compare_price", "weight", "inventory", "is_active":
		return true
	}
	return false
}

// matchesWhere reports whether c selects every value in where.
func matchesWhere(c variant.Combination, where map[string]string) bool {
	for name, want := range where {
		got, ok := c.Attributes.Get(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// fieldMismatch returns a description of the first expect field c fails,
// or "" when every field matches. Decimal fields compare numerically.
func fieldMismatch(c variant.Combination, expect map[string]string) string {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		want := expect[key]
		var got string
		ok := true

		switch key {
		case "id":
			got, ok = c.ID, c.ID == want
		case "sku":
			got, ok = c.SKU, c.SKU == want
		case "barcode":
			got, ok = c.Barcode, c.Barcode == want
		case "price":
			got, ok = c.Price.String(), decimalEqual(c.Price, want)
		case "compare_price":
			got, ok = c.ComparePrice.String(), decimalEqual(c.ComparePrice, want)
		case "weight":
			got, ok = c.Weight.String(), decimalEqual(c.Weight, want)
		case "inventory":
			got = strconv.FormatInt(c.Inventory, 10)
			ok = got == want
		case "is_active":
			got = strconv.FormatBool(c.IsActive)
			ok = got == want
		default:
			return fmt.Sprintf("unknown field %q", key)
		}

		if !ok {
			return fmt.Sprintf("%s=%s (want %s)", key, got, want)
		}
	}
	return ""
}

func decimalEqual(got decimal.Decimal, want string) bool {
	d, err := decimal.NewFromString(want)
	return err == nil && got.Equal(d)
}

func formatWhere(where map[string]string) string {
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + where[k]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// assertCount checks the final list length.
func assertCount(final []variant.Combination, a Assertion) error {
	if len(final) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d combinations", a.Count),
		Actual:   fmt.Sprintf("%d combinations", len(final)),
		Final:    final,
	}
}

// assertContains checks that some combination matches Where and carries
// the Expect fields.
func assertContains(final []variant.Combination, a Assertion) error {
	var mismatches []string
	for _, c := range final {
		if !matchesWhere(c, a.Where) {
			continue
		}
		m := fieldMismatch(c, a.Expect)
		if m == "" {
			return nil
		}
		mismatches = append(mismatches, c.ID+": "+m)
	}

	actual := "no combination matches " + formatWhere(a.Where)
	if len(mismatches) > 0 {
		actual = strings.Join(mismatches, "; ")
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("combination %s with %v", formatWhere(a.Where), a.Expect),
		Actual:   actual,
		Final:    final,
	}
}

// assertAbsent checks that no combination matches Where.
func assertAbsent(final []variant.Combination, a Assertion) error {
	for _, c := range final {
		if matchesWhere(c, a.Where) {
			return &AssertionError{
				Type:     AssertAbsent,
				Expected: "no combination matching " + formatWhere(a.Where),
				Actual:   fmt.Sprintf("found %s (%s)", c.ID, c.Attributes),
				Final:    final,
			}
		}
	}
	return nil
}

// assertOrder checks the exact ID sequence of the final list.
func assertOrder(final []variant.Combination, a Assertion) error {
	ids := make([]string, len(final))
	for i, c := range final {
		ids[i] = c.ID
	}
	if slices.Equal(ids, a.IDs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOrder,
		Expected: strings.Join(a.IDs, ", "),
		Actual:   strings.Join(ids, ", "),
		Final:    final,
	}
}

// assertUniqueBarcodes checks barcode validity and uniqueness.
func assertUniqueBarcodes(final []variant.Combination) error {
	seen := make(map[string]string, len(final))
	for _, c := range final {
		if !variant.ValidBarcode(c.Barcode) {
			return &AssertionError{
				Type:     AssertUniqueBarcodes,
				Expected: "valid EAN-13 barcodes",
				Actual:   fmt.Sprintf("%s has barcode %q", c.ID, c.Barcode),
				Final:    final,
			}
		}
		if other, dup := seen[c.Barcode]; dup {
			return &AssertionError{
				Type:     AssertUniqueBarcodes,
				Expected: "distinct barcodes",
				Actual:   fmt.Sprintf("%s and %s share %s", other, c.ID, c.Barcode),
				Final:    final,
			}
		}
		seen[c.Barcode] = c.ID
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCount:
			err = assertCount(result.Final, assertion)
		case AssertContains:
			err = assertContains(result.Final, assertion)
		case AssertAbsent:
			err = assertAbsent(result.Final, assertion)
		case AssertOrder:
			err = assertOrder(result.Final, assertion)
		case AssertUniqueBarcodes:
			err = assertUniqueBarcodes(result.Final)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
