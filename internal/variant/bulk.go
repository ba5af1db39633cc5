package variant

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Patch is a uniform field update for ApplyBulkUpdate.
//
// A nil field or a zero value means "leave unchanged". Zero is a don't-care
// sentinel here, not an update value, so a bulk edit cannot set price or
// inventory to exactly 0.
type Patch struct {
	Price     *decimal.Decimal `json:"price,omitempty"`
	Inventory *int64           `json:"inventory,omitempty"`
}

// Validate rejects negative patch values.
func (p Patch) Validate() error {
	if p.Price != nil && p.Price.IsNegative() {
		return &MalformedPatchError{Field: "price", Value: p.Price.String()}
	}
	if p.Inventory != nil && *p.Inventory < 0 {
		return &MalformedPatchError{Field: "inventory", Value: strconv.FormatInt(*p.Inventory, 10)}
	}
	return nil
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return !p.setsPrice() && !p.setsInventory()
}

func (p Patch) setsPrice() bool {
	return p.Price != nil && p.Price.IsPositive()
}

func (p Patch) setsInventory() bool {
	return p.Inventory != nil && *p.Inventory > 0
}

// BulkReport is the result of ApplyBulkUpdateReport.
type BulkReport struct {
	// Combinations is the updated list, in input order.
	Combinations []Combination

	// Updated counts targeted combinations found in the list.
	Updated int

	// Unknown lists target IDs not present in the list, sorted.
	Unknown []string
}

// UnknownErr returns an *UnknownTargetError describing Unknown, or nil.
// Unknown targets are a recoverable no-op; this is for logging only.
func (r BulkReport) UnknownErr() error {
	if len(r.Unknown) == 0 {
		return nil
	}
	return &UnknownTargetError{IDs: append([]string(nil), r.Unknown...)}
}

// ApplyBulkUpdate applies patch to every combination whose ID is in
// targetIDs.
//
// The patch is validated first; a negative value rejects the whole call and
// nothing is applied. IDs and attributes are never altered. Untargeted
// combinations come back unchanged and the output order matches the input.
// Target IDs not in the list are ignored.
func ApplyBulkUpdate(combos []Combination, targetIDs []string, patch Patch) ([]Combination, error) {
	report, err := ApplyBulkUpdateReport(combos, targetIDs, patch)
	if err != nil {
		return nil, err
	}
	return report.Combinations, nil
}

// ApplyBulkUpdateReport is ApplyBulkUpdate plus a count of updated records
// and the list of unknown target IDs.
func ApplyBulkUpdateReport(combos []Combination, targetIDs []string, patch Patch) (BulkReport, error) {
	if err := patch.Validate(); err != nil {
		return BulkReport{}, err
	}

	targets := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = false
	}

	out := make([]Combination, len(combos))
	updated := 0
	for i, c := range combos {
		out[i] = c.Clone()
		if _, ok := targets[c.ID]; !ok {
			continue
		}
		targets[c.ID] = true
		updated++
		if patch.setsPrice() {
			out[i].Price = *patch.Price
		}
		if patch.setsInventory() {
			out[i].Inventory = *patch.Inventory
		}
	}

	return BulkReport{
		Combinations: out,
		Updated:      updated,
		Unknown:      unknownTargets(targets),
	}, nil
}

func unknownTargets(targets map[string]bool) []string {
	var unknown []string
	for id, found := range targets {
		if !found {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}
