package testing

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/memory"
)

func mustCreateOrderLine(partNumber entities.PartNumber, qty int64) *entities.OrderLine {
	line, err := entities.NewOrderLine(partNumber, decimal.NewFromInt(qty))
	if err != nil {
		panic(err)
	}
	return line
}

func mustCreateOffer(partNumber entities.PartNumber, supplier entities.SupplierID, price string, qty int64) *entities.QuoteOffer {
	offer, err := entities.NewQuoteOffer(partNumber, supplier, decimal.RequireFromString(price), decimal.NewFromInt(qty))
	if err != nil {
		panic(err)
	}
	return offer
}

// BuildHarnessTestData builds a cable harness order quoted by three distributors.
// CONN_12P splits across suppliers, WIRE_22AWG runs short and GROMMET has no quote.
func BuildHarnessTestData() (*memory.OrderRepository, *memory.QuoteRepository) {
	orderRepo := memory.NewOrderRepository(4)
	quoteRepo := memory.NewQuoteRepository()

	orders := []*entities.OrderLine{
		mustCreateOrderLine("CONN_12P", 40),
		mustCreateOrderLine("WIRE_22AWG", 500),
		mustCreateOrderLine("BOOT_SEAL", 40),
		mustCreateOrderLine("GROMMET", 12),
	}
	if err := orderRepo.LoadOrders(orders); err != nil {
		panic(err)
	}

	offers := []*entities.QuoteOffer{
		mustCreateOffer("CONN_12P", "Contoso", "3.10", 25),
		mustCreateOffer("CONN_12P", "Northwind", "3.45", 100),
		mustCreateOffer("CONN_12P", "Fabrikam", "3.20", 10),
		mustCreateOffer("WIRE_22AWG", "Contoso", "0.12", 300),
		mustCreateOffer("WIRE_22AWG", "Fabrikam", "0.15", 100),
		mustCreateOffer("BOOT_SEAL", "Northwind", "0.80", 40),
		mustCreateOffer("BOOT_SEAL", "Fabrikam", "0.80", 60),
	}
	if err := quoteRepo.LoadOffers(offers); err != nil {
		panic(err)
	}

	return orderRepo, quoteRepo
}

// BuildLargeTestData builds a seeded order of the given size where each part is
// quoted by a random subset of suppliers.
func BuildLargeTestData(parts, suppliers int, seed int64) (*memory.OrderRepository, *memory.QuoteRepository) {
	rng := rand.New(rand.NewSource(seed))
	orderRepo := memory.NewOrderRepository(parts)
	quoteRepo := memory.NewQuoteRepository()

	orders := make([]*entities.OrderLine, 0, parts)
	var offers []*entities.QuoteOffer
	for i := 0; i < parts; i++ {
		partNumber := entities.PartNumber(fmt.Sprintf("PN_%05d", i))
		required := int64(1 + rng.Intn(100))
		orders = append(orders, mustCreateOrderLine(partNumber, required))

		for s := 0; s < suppliers; s++ {
			if rng.Intn(3) == 0 {
				continue
			}
			supplier := entities.SupplierID(fmt.Sprintf("SUPPLIER_%02d", s))
			price := fmt.Sprintf("%d.%02d", 1+rng.Intn(50), rng.Intn(100))
			offers = append(offers, mustCreateOffer(partNumber, supplier, price, int64(1+rng.Intn(int(required)))))
		}
	}

	if err := orderRepo.LoadOrders(orders); err != nil {
		panic(err)
	}
	if err := quoteRepo.LoadOffers(offers); err != nil {
		panic(err)
	}
	return orderRepo, quoteRepo
}
