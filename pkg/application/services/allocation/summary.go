package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// Summary describes how well an allocation covered the order
type Summary struct {
	TotalParts         int             `json:"total_parts"`
	FullyAllocated     int             `json:"fully_allocated"`
	PartiallyAllocated int             `json:"partially_allocated"`
	NotAvailable       int             `json:"not_available"`
	ManuallyPinned     int             `json:"manually_pinned"`
	TotalAllocatedQty  decimal.Decimal `json:"total_allocated_qty"`
	ShortageQty        decimal.Decimal `json:"shortage_qty"`
	TotalCost          decimal.Decimal `json:"total_cost"`
}

// Summarize classifies every ordered part by its allocation lines
func Summarize(orders []entities.OrderLine, lines []entities.AllocationLine) Summary {
	summary := Summary{
		TotalParts:        len(orders),
		TotalAllocatedQty: decimal.Zero,
		ShortageQty:       decimal.Zero,
		TotalCost:         decimal.Zero,
	}

	byPart := LinesByPart(lines)
	for _, order := range orders {
		supplied := decimal.Zero
		short := decimal.Zero
		manual := false

		for _, line := range byPart[order.PartNumber] {
			switch {
			case line.Source == entities.SourceShortage:
				short = short.Add(line.QtyAllocated)
			case line.IsSupplied():
				supplied = supplied.Add(line.QtyAllocated)
				summary.TotalCost = summary.TotalCost.Add(line.TotalCost)
				manual = manual || line.Source.IsManual()
			}
		}

		summary.TotalAllocatedQty = summary.TotalAllocatedQty.Add(supplied)
		summary.ShortageQty = summary.ShortageQty.Add(short)
		if manual {
			summary.ManuallyPinned++
		}

		switch {
		case !supplied.IsPositive():
			summary.NotAvailable++
		case short.IsPositive():
			summary.PartiallyAllocated++
		default:
			summary.FullyAllocated++
		}
	}

	return summary
}

// CostComparison contrasts pure price optimization with the operator's pins
type CostComparison struct {
	AutoCost   decimal.Decimal `json:"auto_cost"`
	ManualCost decimal.Decimal `json:"manual_cost"`
	Difference decimal.Decimal `json:"difference"`
}

// CompareCosts consolidates once without pins and once with them
func CompareCosts(
	orders []entities.OrderLine,
	offers []entities.QuoteOffer,
	selections entities.SupplierSelection,
) CostComparison {
	auto := entities.SumCost(Consolidate(orders, offers, nil))
	manual := entities.SumCost(Consolidate(orders, offers, selections))

	return CostComparison{
		AutoCost:   auto,
		ManualCost: manual,
		Difference: manual.Sub(auto),
	}
}

// SupplierTotal aggregates what one supplier was allocated
type SupplierTotal struct {
	Supplier entities.SupplierID `json:"supplier"`
	Lines    int                 `json:"lines"`
	Qty      decimal.Decimal     `json:"qty"`
	Cost     decimal.Decimal     `json:"cost"`
}

// SupplierTotals groups supplied lines by supplier, sorted by supplier name.
// Sentinel suppliers are excluded.
func SupplierTotals(lines []entities.AllocationLine) []SupplierTotal {
	index := make(map[entities.SupplierID]int)
	var totals []SupplierTotal

	for _, line := range lines {
		if !line.IsSupplied() {
			continue
		}
		i, ok := index[line.Supplier]
		if !ok {
			i = len(totals)
			index[line.Supplier] = i
			totals = append(totals, SupplierTotal{Supplier: line.Supplier, Qty: decimal.Zero, Cost: decimal.Zero})
		}
		totals[i].Lines++
		totals[i].Qty = totals[i].Qty.Add(line.QtyAllocated)
		totals[i].Cost = totals[i].Cost.Add(line.TotalCost)
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].Supplier < totals[j].Supplier })
	return totals
}

// LinesByPart groups lines by part number, keeping line order within each part
func LinesByPart(lines []entities.AllocationLine) map[entities.PartNumber][]entities.AllocationLine {
	byPart := make(map[entities.PartNumber][]entities.AllocationLine)
	for _, line := range lines {
		byPart[line.PartNumber] = append(byPart[line.PartNumber], line)
	}
	return byPart
}

// ForExport returns a copy of lines with shortage lines relabeled for final export
func ForExport(lines []entities.AllocationLine) []entities.AllocationLine {
	out := make([]entities.AllocationLine, len(lines))
	for i, line := range lines {
		if line.Supplier == entities.SupplierShortage {
			line.Supplier = entities.SupplierExportShortage
		}
		out[i] = line
	}
	return out
}
