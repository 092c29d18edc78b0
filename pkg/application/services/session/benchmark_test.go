package session

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/quoteopt/pkg/infrastructure/testing"
)

func newBenchmarkSession(b *testing.B, orders *memory.OrderRepository, quotes *memory.QuoteRepository) *Session {
	b.Helper()
	sess, err := New(Config{
		Orders:     orders,
		Quotes:     quotes,
		Selections: memory.NewSelectionRepository(),
		Runs:       memory.NewAllocationRunRepository(),
	})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	return sess
}

func BenchmarkConsolidate_Large(b *testing.B) {
	orderRepo, quoteRepo := testhelpers.BuildLargeTestData(5000, 8, 1)
	orderPtrs, _ := orderRepo.GetOrders()
	offerPtrs, _ := quoteRepo.GetOffers()

	orders := make([]entities.OrderLine, 0, len(orderPtrs))
	for _, o := range orderPtrs {
		orders = append(orders, *o)
	}
	offers := derefOffers(offerPtrs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		allocation.Consolidate(orders, offers, nil)
	}
}

func BenchmarkSession_Run(b *testing.B) {
	ctx := context.Background()
	orderRepo, quoteRepo := testhelpers.BuildLargeTestData(1000, 6, 2)
	sess := newBenchmarkSession(b, orderRepo, quoteRepo)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sess.Run(ctx); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}

func TestHarnessTestData(t *testing.T) {
	orderRepo, quoteRepo := testhelpers.BuildHarnessTestData()
	sess, err := New(Config{
		Orders:     orderRepo,
		Quotes:     quoteRepo,
		Selections: memory.NewSelectionRepository(),
		Runs:       memory.NewAllocationRunRepository(),
	})
	require.NoError(t, err)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	byPart := allocation.LinesByPart(result.Lines())
	wantSuppliers := map[entities.PartNumber][]entities.SupplierID{
		"CONN_12P":   {"Contoso", "Fabrikam", "Northwind"},
		"WIRE_22AWG": {"Contoso", "Fabrikam", entities.SupplierShortage},
		"BOOT_SEAL":  {"Northwind"},
		"GROMMET":    {entities.SupplierNotAvailable},
	}
	for part, want := range wantSuppliers {
		var got []entities.SupplierID
		for _, line := range byPart[part] {
			got = append(got, line.Supplier)
		}
		assert.Equal(t, want, got, part)
	}
	// 126.75 connectors + 51.00 wire + 32.00 boots
	assert.True(t, result.Summary.TotalCost.Equal(decimal.RequireFromString("209.75")), result.Summary.TotalCost.String())
}
