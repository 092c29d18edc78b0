package repositories

import "github.com/vsinha/quoteopt/pkg/domain/entities"

// QuoteRepository provides access to supplier quotes
type QuoteRepository interface {
	GetOffers() ([]*entities.QuoteOffer, error)
	// GetOffersForPart returns offers for one part in load order.
	GetOffersForPart(partNumber entities.PartNumber) ([]*entities.QuoteOffer, error)
	// GetSuppliers returns the distinct quoting suppliers, sorted.
	GetSuppliers() ([]entities.SupplierID, error)
	LoadOffers(offers []*entities.QuoteOffer) error
}
