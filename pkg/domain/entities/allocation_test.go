package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocationLine_TotalCost(t *testing.T) {
	line := NewAllocationLine("P1", "Acme", decimal.RequireFromString("2.5"), decimal.RequireFromString("4.10"), SourceAutoOptimized)

	assert.Equal(t, "10.25", line.TotalCost.String())
	assert.True(t, line.IsSupplied())
	assert.True(t, line.Source.IsAuto())
	assert.False(t, line.Source.IsManual())
}

func TestSentinelLines(t *testing.T) {
	shortage := NewShortageLine("P2", decimal.NewFromInt(2))
	assert.Equal(t, SupplierShortage, shortage.Supplier)
	assert.Equal(t, SourceShortage, shortage.Source)
	assert.True(t, shortage.UnitPrice.IsZero())
	assert.True(t, shortage.TotalCost.IsZero())
	assert.False(t, shortage.IsSupplied())

	na := NewNotAvailableLine("P5")
	assert.Equal(t, SupplierNotAvailable, na.Supplier)
	assert.Equal(t, SourceNotAvailable, na.Source)
	assert.True(t, na.QtyAllocated.IsZero())
}

func TestIsSentinelSupplier(t *testing.T) {
	for _, s := range SentinelSuppliers() {
		assert.True(t, IsSentinelSupplier(s), s)
	}
	assert.Equal(t, "NOT AVAILABLE", string(SupplierNotAvailable))
	assert.Equal(t, "SHORTAGE", string(SupplierShortage))
	assert.Equal(t, "N/A (SHORTAGE)", string(SupplierExportShortage))
	assert.False(t, IsSentinelSupplier("Acme"))
}

func TestSumsAndRelabel(t *testing.T) {
	lines := []AllocationLine{
		NewAllocationLine("P1", "A", decimal.NewFromInt(4), decimal.NewFromInt(5), SourceAutoOptimized),
		NewAllocationLine("P1", "B", decimal.NewFromInt(4), decimal.NewFromInt(6), SourceAutoOptimized),
		NewShortageLine("P1", decimal.NewFromInt(2)),
	}

	assert.Equal(t, "10", SumQty(lines).String())
	assert.Equal(t, "44", SumCost(lines).String())

	relabeled := WithSource(lines[:2], SourceAutoRemaining)
	require.Len(t, relabeled, 2)
	assert.Equal(t, SourceAutoRemaining, relabeled[0].Source)
	assert.Equal(t, SourceAutoOptimized, lines[0].Source, "input must not be mutated")
}

func TestSupplierNames(t *testing.T) {
	assert.Equal(t, "Acme Indus", SupplierID("Acme Industrial Supply").ShortName(10))
	assert.Equal(t, "Acme", SupplierID("Acme").ShortName(10))
	assert.Equal(t, "acme_industrial_supply", SupplierID("Acme Industrial Supply").FileSlug())
	assert.Equal(t, "a_b_c__ltd_", SupplierID("A/B:C (Ltd)").FileSlug())
}

func TestComputeAllocationDigest(t *testing.T) {
	lines := []AllocationLine{
		NewAllocationLine("P1", "A", decimal.NewFromInt(4), decimal.NewFromInt(5), SourceAutoOptimized),
		NewShortageLine("P1", decimal.NewFromInt(2)),
	}

	d1 := ComputeAllocationDigest(lines)
	d2 := ComputeAllocationDigest(append([]AllocationLine(nil), lines...))
	assert.Len(t, d1, 64)
	assert.Equal(t, d1, d2)

	reordered := []AllocationLine{lines[1], lines[0]}
	assert.NotEqual(t, d1, ComputeAllocationDigest(reordered))

	// Equal decimals with different scale must hash the same
	rescaled := []AllocationLine{
		NewAllocationLine("P1", "A", decimal.RequireFromString("4.00"), decimal.NewFromInt(5), SourceAutoOptimized),
		NewShortageLine("P1", decimal.NewFromInt(2)),
	}
	assert.Equal(t, d1, ComputeAllocationDigest(rescaled))
}

func TestSupplierSelection(t *testing.T) {
	sel := SupplierSelection{"P2": "B", "P1": "A"}

	got, ok := sel.Get("P1")
	require.True(t, ok)
	assert.Equal(t, SupplierID("A"), got)

	_, ok = sel.Get("P9")
	assert.False(t, ok)

	clone := sel.Clone()
	clone["P3"] = "C"
	assert.Len(t, sel, 2)
	assert.Equal(t, []PartNumber{"P1", "P2"}, sel.Parts())
}
