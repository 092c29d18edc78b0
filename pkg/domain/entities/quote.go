package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuoteOffer is a supplier's price and available quantity for one part
type QuoteOffer struct {
	PartNumber   PartNumber      `json:"part_number"`
	Supplier     SupplierID      `json:"supplier"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	AvailableQty decimal.Decimal `json:"available_qty"`
}

// NewQuoteOffer creates a validated QuoteOffer
func NewQuoteOffer(
	partNumber PartNumber,
	supplier SupplierID,
	unitPrice, availableQty decimal.Decimal,
) (*QuoteOffer, error) {
	if string(partNumber) == "" {
		return nil, fmt.Errorf("part number cannot be empty")
	}
	if string(supplier) == "" {
		return nil, fmt.Errorf("supplier cannot be empty")
	}
	if IsSentinelSupplier(supplier) {
		return nil, fmt.Errorf("supplier name %q is reserved", supplier)
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("unit price must be positive, got %s", unitPrice)
	}
	if !availableQty.IsPositive() {
		return nil, fmt.Errorf("available qty must be positive, got %s", availableQty)
	}

	return &QuoteOffer{
		PartNumber:   partNumber,
		Supplier:     supplier,
		UnitPrice:    unitPrice,
		AvailableQty: availableQty,
	}, nil
}

// OffersForPart filters offers down to one part, keeping input order
func OffersForPart(offers []QuoteOffer, partNumber PartNumber) []QuoteOffer {
	var result []QuoteOffer
	for _, offer := range offers {
		if offer.PartNumber == partNumber {
			result = append(result, offer)
		}
	}
	return result
}

// FindOffer returns the first offer from supplier, which is authoritative when duplicates exist
func FindOffer(offers []QuoteOffer, supplier SupplierID) (QuoteOffer, bool) {
	for _, offer := range offers {
		if offer.Supplier == supplier {
			return offer, true
		}
	}
	return QuoteOffer{}, false
}
