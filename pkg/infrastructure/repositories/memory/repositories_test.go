package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

func orderLine(part entities.PartNumber, qty int64) *entities.OrderLine {
	return &entities.OrderLine{PartNumber: part, QtyRequired: decimal.NewFromInt(qty)}
}

func quote(part entities.PartNumber, supplier entities.SupplierID, price, qty int64) *entities.QuoteOffer {
	return &entities.QuoteOffer{
		PartNumber:   part,
		Supplier:     supplier,
		UnitPrice:    decimal.NewFromInt(price),
		AvailableQty: decimal.NewFromInt(qty),
	}
}

func TestOrderRepository_LoadKeepsFirstLinePerPart(t *testing.T) {
	repo := NewOrderRepository(4)
	require.NoError(t, repo.LoadOrders([]*entities.OrderLine{
		orderLine("P2", 5),
		orderLine("P1", 3),
		orderLine("P2", 99),
		nil,
	}))

	orders, err := repo.GetOrders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, entities.PartNumber("P2"), orders[0].PartNumber)
	assert.True(t, decimal.NewFromInt(5).Equal(orders[0].QtyRequired))

	line, err := repo.GetOrder("P1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(line.QtyRequired))

	_, err = repo.GetOrder("P9")
	assert.Error(t, err)
}

func TestOrderRepository_ReloadReplaces(t *testing.T) {
	repo := NewOrderRepository(0)
	require.NoError(t, repo.LoadOrders([]*entities.OrderLine{orderLine("P1", 1)}))
	require.NoError(t, repo.LoadOrders([]*entities.OrderLine{orderLine("P2", 2)}))

	orders, err := repo.GetOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entities.PartNumber("P2"), orders[0].PartNumber)

	_, err = repo.GetOrder("P1")
	assert.Error(t, err)
}

func TestOrderRepository_ReturnedLinesAreCopies(t *testing.T) {
	repo := NewOrderRepository(1)
	require.NoError(t, repo.LoadOrders([]*entities.OrderLine{orderLine("P1", 1)}))

	orders, _ := repo.GetOrders()
	orders[0].PartNumber = "CHANGED"

	line, err := repo.GetOrder("P1")
	require.NoError(t, err)
	assert.Equal(t, entities.PartNumber("P1"), line.PartNumber)
}

func TestQuoteRepository(t *testing.T) {
	repo := NewQuoteRepository()
	require.NoError(t, repo.LoadOffers([]*entities.QuoteOffer{
		quote("P1", "SupplierB", 4, 10),
		quote("P2", "SupplierA", 5, 4),
		quote("P1", "SupplierA", 4, 2),
	}))

	all, err := repo.GetOffers()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	p1, err := repo.GetOffersForPart("P1")
	require.NoError(t, err)
	require.Len(t, p1, 2)
	assert.Equal(t, entities.SupplierID("SupplierB"), p1[0].Supplier)
	assert.Equal(t, entities.SupplierID("SupplierA"), p1[1].Supplier)

	none, err := repo.GetOffersForPart("P9")
	require.NoError(t, err)
	assert.Empty(t, none)

	suppliers, err := repo.GetSuppliers()
	require.NoError(t, err)
	assert.Equal(t, []entities.SupplierID{"SupplierA", "SupplierB"}, suppliers)
}

func TestSelectionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSelectionRepository()

	require.NoError(t, repo.SetPin(ctx, "P1", "SupplierA"))
	require.NoError(t, repo.SetPin(ctx, "P2", "SupplierB"))
	require.NoError(t, repo.SetPin(ctx, "P1", "SupplierC"))

	selections, err := repo.GetSelections(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SupplierSelection{"P1": "SupplierC", "P2": "SupplierB"}, selections)

	selections["P3"] = "Mutated"
	again, _ := repo.GetSelections(ctx)
	assert.NotContains(t, again, entities.PartNumber("P3"))

	require.NoError(t, repo.ClearPin(ctx, "P1"))
	require.NoError(t, repo.ClearPin(ctx, "P404"))
	again, _ = repo.GetSelections(ctx)
	assert.Equal(t, entities.SupplierSelection{"P2": "SupplierB"}, again)

	require.NoError(t, repo.ClearAll(ctx))
	again, _ = repo.GetSelections(ctx)
	assert.Empty(t, again)
}

func TestSelectionRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewSelectionRepository()
	assert.ErrorIs(t, repo.SetPin(ctx, "P1", "A"), context.Canceled)
	_, err := repo.GetSelections(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllocationRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAllocationRunRepository()

	_, err := repo.LatestRun(ctx)
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)

	lines := []entities.AllocationLine{
		entities.NewAllocationLine("P1", "SupplierB", decimal.NewFromInt(10), decimal.NewFromInt(4), entities.SourceAutoOptimized),
	}
	first := &entities.AllocationRun{
		ID:         "run-1",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Selections: entities.SupplierSelection{"P1": "SupplierB"},
		Lines:      lines,
		Digest:     entities.ComputeAllocationDigest(lines),
	}
	require.NoError(t, repo.SaveRun(ctx, first))
	require.NoError(t, repo.SaveRun(ctx, &entities.AllocationRun{ID: "run-2"}))

	assert.Error(t, repo.SaveRun(ctx, &entities.AllocationRun{ID: "run-1"}))
	assert.Error(t, repo.SaveRun(ctx, &entities.AllocationRun{}))

	first.Selections["P2"] = "Mutated"

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, first.Digest, got.Digest)
	assert.Equal(t, entities.SupplierSelection{"P1": "SupplierB"}, got.Selections)

	latest, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)

	_, err = repo.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
}

func TestOrderRepository_GetOrder(t *testing.T) {
	repo := NewOrderRepository(3)
	err := repo.LoadOrders([]*entities.OrderLine{
		orderLine("P1", 3),
		orderLine("P2", 7),
		orderLine("P1", 50),
	})
	if err != nil {
		t.Fatalf("Failed to load orders: %v", err)
	}

	tests := []struct {
		part    entities.PartNumber
		wantQty int64
		wantErr bool
	}{
		{"P1", 3, false},
		{"P2", 7, false},
		{"P3", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.part), func(t *testing.T) {
			line, err := repo.GetOrder(tt.part)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for part %q, got line %v", tt.part, line)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to get order %s: %v", tt.part, err)
			}
			if !line.QtyRequired.Equal(decimal.NewFromInt(tt.wantQty)) {
				t.Errorf("Expected quantity %d, got %s", tt.wantQty, line.QtyRequired)
			}
		})
	}
}

func TestQuoteRepository_GetOffersForPart(t *testing.T) {
	repo := NewQuoteRepository()
	err := repo.LoadOffers([]*entities.QuoteOffer{
		quote("P1", "SupplierC", 9, 1),
		quote("P2", "SupplierA", 5, 4),
		quote("P1", "SupplierA", 4, 2),
		quote("P1", "SupplierB", 4, 8),
	})
	if err != nil {
		t.Fatalf("Failed to load offers: %v", err)
	}

	tests := []struct {
		part          entities.PartNumber
		wantSuppliers []entities.SupplierID
	}{
		{"P1", []entities.SupplierID{"SupplierC", "SupplierA", "SupplierB"}},
		{"P2", []entities.SupplierID{"SupplierA"}},
		{"P3", nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.part), func(t *testing.T) {
			offers, err := repo.GetOffersForPart(tt.part)
			if err != nil {
				t.Fatalf("Failed to get offers for %s: %v", tt.part, err)
			}
			if len(offers) != len(tt.wantSuppliers) {
				t.Fatalf("Expected %d offers, got %d", len(tt.wantSuppliers), len(offers))
			}
			for i, supplier := range tt.wantSuppliers {
				if offers[i].Supplier != supplier {
					t.Errorf("Expected offer %d from %s, got %s", i, supplier, offers[i].Supplier)
				}
			}
		})
	}
}

func TestSelectionRepository_PinSequences(t *testing.T) {
	type step struct {
		op       string
		part     entities.PartNumber
		supplier entities.SupplierID
	}

	tests := []struct {
		name  string
		steps []step
		want  entities.SupplierSelection
	}{
		{
			name:  "later pin replaces earlier",
			steps: []step{{"set", "P1", "A"}, {"set", "P1", "B"}},
			want:  entities.SupplierSelection{"P1": "B"},
		},
		{
			name:  "clear unknown part is a no-op",
			steps: []step{{"set", "P1", "A"}, {"clear", "P9", ""}},
			want:  entities.SupplierSelection{"P1": "A"},
		},
		{
			name:  "pin after clear-all survives",
			steps: []step{{"set", "P1", "A"}, {"set", "P2", "B"}, {"reset", "", ""}, {"set", "P3", "C"}},
			want:  entities.SupplierSelection{"P3": "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewSelectionRepository()

			for _, s := range tt.steps {
				var err error
				switch s.op {
				case "set":
					err = repo.SetPin(ctx, s.part, s.supplier)
				case "clear":
					err = repo.ClearPin(ctx, s.part)
				case "reset":
					err = repo.ClearAll(ctx)
				}
				if err != nil {
					t.Fatalf("Failed to apply %s %s: %v", s.op, s.part, err)
				}
			}

			got, err := repo.GetSelections(ctx)
			if err != nil {
				t.Fatalf("Failed to get selections: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d pins, got %d (%v)", len(tt.want), len(got), got)
			}
			for part, supplier := range tt.want {
				if got[part] != supplier {
					t.Errorf("Expected %s pinned to %s, got %s", part, supplier, got[part])
				}
			}
		})
	}
}
