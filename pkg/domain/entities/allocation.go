package entities

import (
	"github.com/shopspring/decimal"
)

// AllocationSource records how an allocation line came to be
type AllocationSource string

const (
	SourceAutoOptimized AllocationSource = "Auto-Optimized"
	SourceManual        AllocationSource = "Manual Selection"
	SourceManualPartial AllocationSource = "Manual Selection (Partial)"
	SourceAutoRemaining AllocationSource = "Auto-Optimized (Remaining)"
	SourceShortage      AllocationSource = "Shortage"
	SourceNotAvailable  AllocationSource = "Not Available"
)

// IsManual reports whether the line came from an operator pin
func (s AllocationSource) IsManual() bool {
	return s == SourceManual || s == SourceManualPartial
}

// IsAuto reports whether the line was chosen by price optimization
func (s AllocationSource) IsAuto() bool {
	return s == SourceAutoOptimized || s == SourceAutoRemaining
}

// AllocationLine assigns a quantity of one part to one supplier at one price
type AllocationLine struct {
	PartNumber   PartNumber       `json:"part_number"`
	Supplier     SupplierID       `json:"supplier"`
	QtyAllocated decimal.Decimal  `json:"qty_allocated"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	TotalCost    decimal.Decimal  `json:"total_cost"`
	Source       AllocationSource `json:"source"`
}

// NewAllocationLine builds a line and derives its total cost
func NewAllocationLine(
	partNumber PartNumber,
	supplier SupplierID,
	qty, unitPrice decimal.Decimal,
	source AllocationSource,
) AllocationLine {
	return AllocationLine{
		PartNumber:   partNumber,
		Supplier:     supplier,
		QtyAllocated: qty,
		UnitPrice:    unitPrice,
		TotalCost:    qty.Mul(unitPrice),
		Source:       source,
	}
}

// NewShortageLine records unmet demand for a part
func NewShortageLine(partNumber PartNumber, remaining decimal.Decimal) AllocationLine {
	return NewAllocationLine(partNumber, SupplierShortage, remaining, decimal.Zero, SourceShortage)
}

// NewNotAvailableLine records a part that no supplier quoted
func NewNotAvailableLine(partNumber PartNumber) AllocationLine {
	return NewAllocationLine(partNumber, SupplierNotAvailable, decimal.Zero, decimal.Zero, SourceNotAvailable)
}

// IsSupplied reports whether the line is backed by a real supplier
func (l AllocationLine) IsSupplied() bool {
	return !IsSentinelSupplier(l.Supplier)
}

// SumQty totals the allocated quantity over lines
func SumQty(lines []AllocationLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.QtyAllocated)
	}
	return total
}

// SumCost totals the cost over lines
func SumCost(lines []AllocationLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalCost)
	}
	return total
}

// WithSource returns a copy of lines relabeled with source
func WithSource(lines []AllocationLine, source AllocationSource) []AllocationLine {
	out := make([]AllocationLine, len(lines))
	for i, line := range lines {
		line.Source = source
		out[i] = line
	}
	return out
}
