package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// Resolve allocates a part with a pinned supplier. The pinned supplier takes as
// much as it has available; whatever is left goes to the other suppliers by price.
// A pin with no matching offer, or whose offer has nothing available, is ignored
// and the part is allocated as if unpinned.
// Any shortfall is left for the caller to record.
func Resolve(
	partNumber entities.PartNumber,
	qtyNeeded decimal.Decimal,
	pinned entities.SupplierID,
	offers []entities.QuoteOffer,
) []entities.AllocationLine {
	pinnedOffer, ok := entities.FindOffer(entities.OffersForPart(offers, partNumber), pinned)
	if !ok || !pinnedOffer.AvailableQty.IsPositive() {
		lines, _ := Allocate(partNumber, qtyNeeded, offers)
		return lines
	}
	if !qtyNeeded.IsPositive() {
		return nil
	}

	if pinnedOffer.AvailableQty.GreaterThanOrEqual(qtyNeeded) {
		return []entities.AllocationLine{entities.NewAllocationLine(
			partNumber,
			pinned,
			qtyNeeded,
			pinnedOffer.UnitPrice,
			entities.SourceManual,
		)}
	}

	lines := []entities.AllocationLine{entities.NewAllocationLine(
		partNumber,
		pinned,
		pinnedOffer.AvailableQty,
		pinnedOffer.UnitPrice,
		entities.SourceManualPartial,
	)}

	others := make([]entities.QuoteOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.Supplier != pinned {
			others = append(others, offer)
		}
	}

	remainder, _ := Allocate(partNumber, qtyNeeded.Sub(pinnedOffer.AvailableQty), others)
	return append(lines, entities.WithSource(remainder, entities.SourceAutoRemaining)...)
}
