package variant

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter sentinels. Either one disables attribute filtering.
const (
	AllAttributes = "all"
	AllValues     = "all"
)

// Search keeps combinations whose SKU or any attribute value contains query,
// compared case-insensitively. An empty query matches everything.
//
// The input is never modified; the result holds copies.
func Search(combos []Combination, query string) []Combination {
	return Query{Text: query}.Apply(combos)
}

// FilterByAttribute keeps combinations whose value for name equals value.
//
// name "" or AllAttributes, and value "" or AllValues, disable filtering.
// Malformed input degrades to no filter; it never errors.
func FilterByAttribute(combos []Combination, name, value string) []Combination {
	return Query{Attribute: name, Value: value}.Apply(combos)
}

// Query combines free-text search with a single attribute/value filter.
// Both predicates are ANDed, so applying them in either order, or together,
// yields the same result.
type Query struct {
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Apply returns copies of the combinations matching q, in input order.
func (q Query) Apply(combos []Combination) []Combination {
	match := q.matcher()
	out := make([]Combination, 0, len(combos))
	for _, c := range combos {
		if match(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Matches reports whether a single combination satisfies q.
func (q Query) Matches(c Combination) bool {
	return q.matcher()(c)
}

func (q Query) filtersAttribute() bool {
	return q.Attribute != "" && q.Attribute != AllAttributes &&
		q.Value != "" && q.Value != AllValues
}

func (q Query) matcher() func(Combination) bool {
	var needle string
	fold := cases.Fold()
	if q.Text != "" {
		needle = fold.String(q.Text)
	}
	filter := q.filtersAttribute()

	return func(c Combination) bool {
		if filter {
			v, ok := c.Attributes.Get(q.Attribute)
			if !ok || v != q.Value {
				return false
			}
		}
		if needle == "" {
			return true
		}
		if strings.Contains(fold.String(c.SKU), needle) {
			return true
		}
		for _, p := range c.Attributes {
			if strings.Contains(fold.String(p.Value), needle) {
				return true
			}
		}
		return false
	}
}

// Values returns the distinct values of the named attribute across combos,
// in first-seen order. Hosts use it to populate filter choices.
func Values(combos []Combination, name string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range combos {
		v, ok := c.Attributes.Get(name)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
