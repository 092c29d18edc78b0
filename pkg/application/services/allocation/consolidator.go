package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// Consolidate allocates every ordered part and returns the combined line list in
// order-list order. Each part's lines sum to its required quantity: pinned or auto
// lines first, then a single Shortage line for any uncovered remainder. A part
// nobody quoted gets one Not Available line. Inputs are not modified.
func Consolidate(
	orders []entities.OrderLine,
	offers []entities.QuoteOffer,
	selections entities.SupplierSelection,
) []entities.AllocationLine {
	if len(orders) == 0 || len(offers) == 0 {
		return []entities.AllocationLine{}
	}

	offersByPart := groupOffers(offers)
	lines := make([]entities.AllocationLine, 0, len(orders))

	for _, order := range orders {
		lines = append(lines, consolidatePart(order, offersByPart[order.PartNumber], selections)...)
	}

	return lines
}

func consolidatePart(
	order entities.OrderLine,
	partOffers []entities.QuoteOffer,
	selections entities.SupplierSelection,
) []entities.AllocationLine {
	if len(partOffers) == 0 {
		return []entities.AllocationLine{entities.NewNotAvailableLine(order.PartNumber)}
	}

	var lines []entities.AllocationLine
	var remaining decimal.Decimal

	if pinned, ok := selections.Get(order.PartNumber); ok {
		lines = Resolve(order.PartNumber, order.QtyRequired, pinned, partOffers)
		remaining = order.QtyRequired.Sub(entities.SumQty(lines))
	} else {
		lines, remaining = Allocate(order.PartNumber, order.QtyRequired, partOffers)
	}

	if remaining.IsPositive() {
		lines = append(lines, entities.NewShortageLine(order.PartNumber, remaining))
	}

	return lines
}

// groupOffers indexes offers by part, preserving input order within each part
func groupOffers(offers []entities.QuoteOffer) map[entities.PartNumber][]entities.QuoteOffer {
	byPart := make(map[entities.PartNumber][]entities.QuoteOffer)
	for _, offer := range offers {
		byPart[offer.PartNumber] = append(byPart[offer.PartNumber], offer)
	}
	return byPart
}
