// Package stock computes the net inventory changes required to move an order
// between two item sets. Deltas are always produced as a single combined map
// so that overlapping skus cancel out instead of being released and consumed
// in two separate dispatches.
package stock

import (
	"sort"
	"strings"
)

// customPrefix marks non-inventory line items (open rings, service charges)
// that are exempt from stock tracking.
const customPrefix = "CUSTOM-"

// Set maps a sku to a quantity. It represents the inventory-tracked portion
// of an order's item list.
type Set map[string]int

// NewSet returns an empty Set.
func NewSet() Set {
	return make(Set)
}

// Add accumulates qty for sku. Empty and CUSTOM-prefixed skus are ignored.
func (s Set) Add(sku string, qty int) {
	if sku == "" || strings.HasPrefix(sku, customPrefix) {
		return
	}
	s[sku] += qty
}

// Changes maps a sku to a signed inventory adjustment. Positive values return
// stock to inventory, negative values consume it.
type Changes map[string]int

// Diff returns the combined signed delta that moves inventory from the
// receiver (the prior state, released) to after (the new state, consumed).
// A nil receiver or argument behaves as an empty set, which yields the pure
// return and pure consumption cases.
func (before Set) Diff(after Set) Changes {
	changes := make(Changes, len(before)+len(after))
	for sku, qty := range before {
		changes[sku] += qty
	}
	for sku, qty := range after {
		changes[sku] -= qty
	}
	return changes
}

// Update is one entry of a batched stock-update dispatch, applied additively
// by the inventory service.
type Update struct {
	SKU    string `json:"sku"`
	Change int    `json:"change"`
}

// Updates flattens the change map into a dispatchable batch. Zero-valued
// entries are dropped and the result is sorted by sku so dispatches are
// deterministic. An empty result means no dispatch is needed.
func (c Changes) Updates() []Update {
	updates := make([]Update, 0, len(c))
	for sku, change := range c {
		if change == 0 {
			continue
		}
		updates = append(updates, Update{SKU: sku, Change: change})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].SKU < updates[j].SKU })
	if len(updates) == 0 {
		return nil
	}
	return updates
}
