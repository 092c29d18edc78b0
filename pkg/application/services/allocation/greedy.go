// Package allocation splits required part quantities across competing supplier
// quotes at minimum cost and folds operator pins into the result.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// Allocate covers qtyNeeded from the cheapest offers first. Offers with equal
// unit price are consumed in input order. It returns one Auto-Optimized line per
// offer used and the quantity left uncovered.
func Allocate(
	partNumber entities.PartNumber,
	qtyNeeded decimal.Decimal,
	offers []entities.QuoteOffer,
) ([]entities.AllocationLine, decimal.Decimal) {
	remaining := qtyNeeded
	if !remaining.IsPositive() {
		return nil, decimal.Zero
	}

	var lines []entities.AllocationLine
	for _, offer := range SortByPrice(partNumber, offers) {
		if !remaining.IsPositive() {
			break
		}

		qty := decimal.Min(remaining, offer.AvailableQty)
		lines = append(lines, entities.NewAllocationLine(
			partNumber,
			offer.Supplier,
			qty,
			offer.UnitPrice,
			entities.SourceAutoOptimized,
		))
		remaining = remaining.Sub(qty)
	}

	return lines, remaining
}

// SortByPrice returns usable offers for the part ordered by ascending unit price,
// keeping input order among equal prices
func SortByPrice(partNumber entities.PartNumber, offers []entities.QuoteOffer) []entities.QuoteOffer {
	sorted := make([]entities.QuoteOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.PartNumber != partNumber || !offer.AvailableQty.IsPositive() {
			continue
		}
		sorted = append(sorted, offer)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
	})

	return sorted
}
