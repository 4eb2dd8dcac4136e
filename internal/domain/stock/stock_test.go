package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Add_SkipsCustomAndEmptySKUs(t *testing.T) {
	s := NewSet()
	s.Add("1001", 2)
	s.Add("CUSTOM-repair", 1)
	s.Add("", 5)
	s.Add("1001", 3)

	assert.Equal(t, Set{"1001": 5}, s)
}

func TestDiff_PureConsumption(t *testing.T) {
	after := NewSet()
	after.Add("1001", 2)

	updates := Set(nil).Diff(after).Updates()
	assert.Equal(t, []Update{{SKU: "1001", Change: -2}}, updates)
}

func TestDiff_PureReturn(t *testing.T) {
	before := NewSet()
	before.Add("1001", 2)

	updates := before.Diff(nil).Updates()
	assert.Equal(t, []Update{{SKU: "1001", Change: 2}}, updates)
}

func TestDiff_OverlappingSKUsCombine(t *testing.T) {
	before := NewSet()
	before.Add("A", 3)
	after := NewSet()
	after.Add("A", 1)
	after.Add("B", 2)

	updates := before.Diff(after).Updates()
	assert.Equal(t, []Update{{SKU: "A", Change: 2}, {SKU: "B", Change: -2}}, updates)
}

func TestDiff_IdenticalSetsDispatchNothing(t *testing.T) {
	before := NewSet()
	before.Add("A", 3)
	before.Add("B", 1)
	after := NewSet()
	after.Add("A", 3)
	after.Add("B", 1)

	assert.Empty(t, before.Diff(after).Updates())
}

func TestDiff_CreateThenCancelConserves(t *testing.T) {
	items := NewSet()
	items.Add("1001", 2)
	items.Add("2002", 1)

	net := make(map[string]int)
	for _, u := range Set(nil).Diff(items).Updates() {
		net[u.SKU] += u.Change
	}
	for _, u := range items.Diff(nil).Updates() {
		net[u.SKU] += u.Change
	}

	for sku, sum := range net {
		require.Zerof(t, sum, "sku %s drifted", sku)
	}
}

func TestUpdates_SortedBySKU(t *testing.T) {
	c := Changes{"Z": 1, "A": -1, "M": 2}
	updates := c.Updates()

	require.Len(t, updates, 3)
	assert.Equal(t, "A", updates[0].SKU)
	assert.Equal(t, "M", updates[1].SKU)
	assert.Equal(t, "Z", updates[2].SKU)
}
