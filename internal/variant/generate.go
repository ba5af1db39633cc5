package variant

import (
	"math"
	"strings"
)

// Validate checks an attribute set for the conditions Generate rejects.
//
// Rules:
//   - Attribute names are non-blank and unique within the set
//   - Values are non-blank and unique within their attribute
//
// An attribute with no values is valid; it expands to zero combinations.
func Validate(attrs AttributeSet) error {
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if strings.TrimSpace(a.Name) == "" {
			return &InvalidAttributeError{
				Code:    ErrCodeEmptyAttributeName,
				Message: "attribute name must not be blank",
			}
		}
		if _, dup := seen[a.Name]; dup {
			return newDuplicateAttributeError(a.Name)
		}
		seen[a.Name] = struct{}{}

		values := make(map[string]struct{}, len(a.Values))
		for _, v := range a.Values {
			if strings.TrimSpace(v) == "" {
				return &InvalidAttributeError{
					Code:      ErrCodeEmptyValue,
					Attribute: a.Name,
					Message:   "attribute value must not be blank",
				}
			}
			if _, dup := values[v]; dup {
				return newDuplicateValueError(a.Name, v)
			}
			values[v] = struct{}{}
		}
	}
	return nil
}

// Count returns the number of combinations attrs expands to.
// Saturates at math.MaxInt instead of overflowing.
func Count(attrs AttributeSet) int {
	if len(attrs) == 0 {
		return 0
	}
	total := 1
	for _, a := range attrs {
		n := len(a.Values)
		if n == 0 {
			return 0
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

// Generate expands attrs into its Cartesian product of assignments.
//
// Output order is odometer order: attributes and values are taken in the
// order given and the last attribute advances fastest. For
// [Color: Red, Blue] x [Size: S, M] the result is
// (Red,S) (Red,M) (Blue,S) (Blue,M).
//
// An empty set yields no assignments (not one empty assignment). Invalid
// sets are rejected with an *InvalidAttributeError.
func Generate(attrs AttributeSet) ([]Assignment, error) {
	return GenerateLimit(attrs, 0)
}

// GenerateLimit is Generate with an upper bound on the number of
// combinations. A limit of 0 means unlimited. The bound is checked before
// anything is allocated.
func GenerateLimit(attrs AttributeSet, limit int) ([]Assignment, error) {
	if err := Validate(attrs); err != nil {
		return nil, err
	}

	total := Count(attrs)
	if limit > 0 && total > limit {
		return nil, newTooManyError(total, limit)
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]Assignment, 0, total)
	cursor := make([]int, len(attrs))
	for {
		a := make(Assignment, len(attrs))
		for i, attr := range attrs {
			a[i] = Pair{Name: attr.Name, Value: attr.Values[cursor[i]]}
		}
		out = append(out, a)

		// Advance the odometer from the rightmost wheel.
		i := len(attrs) - 1
		for ; i >= 0; i-- {
			cursor[i]++
			if cursor[i] < len(attrs[i].Values) {
				break
			}
			cursor[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}
