package memory

import (
	"sort"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

// QuoteRepository provides in-memory quote storage with a per-part index
type QuoteRepository struct {
	offers    []entities.QuoteOffer
	byPart    map[entities.PartNumber][]int
	suppliers map[entities.SupplierID]struct{}
}

// NewQuoteRepository creates a new in-memory quote repository
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{
		byPart:    make(map[entities.PartNumber][]int),
		suppliers: make(map[entities.SupplierID]struct{}),
	}
}

// Verify interface compliance
var _ repositories.QuoteRepository = (*QuoteRepository)(nil)

// LoadOffers replaces the stored offers, keeping their order
func (r *QuoteRepository) LoadOffers(offers []*entities.QuoteOffer) error {
	r.offers = make([]entities.QuoteOffer, 0, len(offers))
	r.byPart = make(map[entities.PartNumber][]int)
	r.suppliers = make(map[entities.SupplierID]struct{})
	for _, offer := range offers {
		if offer == nil {
			continue
		}
		r.byPart[offer.PartNumber] = append(r.byPart[offer.PartNumber], len(r.offers))
		r.suppliers[offer.Supplier] = struct{}{}
		r.offers = append(r.offers, *offer)
	}
	return nil
}

func (r *QuoteRepository) GetOffers() ([]*entities.QuoteOffer, error) {
	offers := make([]*entities.QuoteOffer, 0, len(r.offers))
	for i := range r.offers {
		offer := r.offers[i]
		offers = append(offers, &offer)
	}
	return offers, nil
}

func (r *QuoteRepository) GetOffersForPart(partNumber entities.PartNumber) ([]*entities.QuoteOffer, error) {
	indexes := r.byPart[partNumber]
	offers := make([]*entities.QuoteOffer, 0, len(indexes))
	for _, i := range indexes {
		offer := r.offers[i]
		offers = append(offers, &offer)
	}
	return offers, nil
}

func (r *QuoteRepository) GetSuppliers() ([]entities.SupplierID, error) {
	suppliers := make([]entities.SupplierID, 0, len(r.suppliers))
	for supplier := range r.suppliers {
		suppliers = append(suppliers, supplier)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i] < suppliers[j] })
	return suppliers, nil
}
