// Package variant implements the product-variant combination engine.
//
// Given an ordered AttributeSet (Color -> Red, Blue; Size -> S, M) the engine
// generates every attribute assignment of the Cartesian product, reconciles
// the generated assignments against a previously edited combination list, and
// offers search, filter and bulk-update projections over the result.
//
// The typical host loop is:
//
//	assignments, err := variant.Generate(attrs)
//	combos, err := variant.Reconcile(assignments, current)
//	visible := variant.Query{Text: q, Attribute: "Color", Value: "Red"}.Apply(combos)
//	combos, err = variant.ApplyBulkUpdate(combos, selected, variant.Patch{Price: &p})
//
// Key constraints:
//   - Every operation is a synchronous pure function over its inputs
//   - Inputs are never mutated and outputs never alias input slices
//   - Combination IDs are assigned once and survive regeneration unchanged
//   - No two combinations in a list share the same assignment content
//   - Errors reject the whole call; there are no partial results
package variant
