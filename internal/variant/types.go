package variant

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Attribute is a named axis of product variation with its ordered values.
type Attribute struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// AttributeSet is the ordered list of attributes a host edits.
// Attribute order drives both combination order and SKU layout.
type AttributeSet []Attribute

// Names returns the attribute names in set order.
func (s AttributeSet) Names() []string {
	names := make([]string, len(s))
	for i, a := range s {
		names[i] = a.Name
	}
	return names
}

// Clone returns a deep copy of the set.
func (s AttributeSet) Clone() AttributeSet {
	if s == nil {
		return nil
	}
	out := make(AttributeSet, len(s))
	for i, a := range s {
		out[i] = Attribute{Name: a.Name, Values: append([]string(nil), a.Values...)}
	}
	return out
}

// Pair is one attribute/value selection inside an Assignment.
type Pair struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Assignment selects exactly one value per attribute of the owning set.
//
// Pairs are kept in attribute order so SKU derivation is stable. Content
// equality ignores pair order: two assignments are equal when they map the
// same names to the same values.
type Assignment []Pair

// NewAssignment builds an Assignment from alternating name/value strings.
//
//	NewAssignment("Color", "Red", "Size", "S")
//
// Panics on an odd number of arguments.
func NewAssignment(nameValues ...string) Assignment {
	if len(nameValues)%2 != 0 {
		panic("variant.NewAssignment: odd number of arguments")
	}
	a := make(Assignment, 0, len(nameValues)/2)
	for i := 0; i < len(nameValues); i += 2 {
		a = append(a, Pair{Name: nameValues[i], Value: nameValues[i+1]})
	}
	return a
}

// Get returns the value selected for the named attribute.
func (a Assignment) Get(name string) (string, bool) {
	for _, p := range a {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Names returns the attribute names in assignment order.
func (a Assignment) Names() []string {
	names := make([]string, len(a))
	for i, p := range a {
		names[i] = p.Name
	}
	return names
}

// Equal reports whether both assignments have identical content.
func (a Assignment) Equal(other Assignment) bool {
	if len(a) != len(other) {
		return false
	}
	return a.Key() == other.Key()
}

// Clone returns a copy that shares no backing array with a.
func (a Assignment) Clone() Assignment {
	if a == nil {
		return nil
	}
	return append(Assignment(nil), a...)
}

// String renders the assignment as "Color: Red / Size: S".
func (a Assignment) String() string {
	parts := make([]string, len(a))
	for i, p := range a {
		parts[i] = p.Name + ": " + p.Value
	}
	return strings.Join(parts, " / ")
}

// Combination is one concrete sellable variant.
type Combination struct {
	ID           string          `json:"id"`
	Attributes   Assignment      `json:"attributes"`
	Price        decimal.Decimal `json:"price"`
	ComparePrice decimal.Decimal `json:"compare_price"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode"`
	Weight       decimal.Decimal `json:"weight"`
	IsActive     bool            `json:"is_active"`
	Inventory    int64           `json:"inventory"`
	Images       []string        `json:"images"`
}

// Clone returns a deep copy of the combination.
func (c Combination) Clone() Combination {
	out := c
	out.Attributes = c.Attributes.Clone()
	if c.Images != nil {
		out.Images = append(make([]string, 0, len(c.Images)), c.Images...)
	}
	return out
}

// cloneAll deep-copies a combination list into a fresh slice.
func cloneAll(combos []Combination) []Combination {
	out := make([]Combination, len(combos))
	for i, c := range combos {
		out[i] = c.Clone()
	}
	return out
}
