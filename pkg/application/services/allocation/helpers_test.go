package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func offer(part entities.PartNumber, supplier entities.SupplierID, price, qty int64) entities.QuoteOffer {
	return entities.QuoteOffer{
		PartNumber:   part,
		Supplier:     supplier,
		UnitPrice:    dec(price),
		AvailableQty: dec(qty),
	}
}

func order(part entities.PartNumber, qty int64) entities.OrderLine {
	return entities.OrderLine{PartNumber: part, QtyRequired: dec(qty)}
}

type wantLine struct {
	supplier entities.SupplierID
	qty      int64
	price    int64
	source   entities.AllocationSource
}

func assertLines(t *testing.T, part entities.PartNumber, want []wantLine, got []entities.AllocationLine) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i, w := range want {
		g := got[i]
		assert.Equal(t, part, g.PartNumber, "line %d part", i)
		assert.Equal(t, w.supplier, g.Supplier, "line %d supplier", i)
		assert.True(t, dec(w.qty).Equal(g.QtyAllocated), "line %d qty: want %d, got %s", i, w.qty, g.QtyAllocated)
		assert.True(t, dec(w.price).Equal(g.UnitPrice), "line %d price: want %d, got %s", i, w.price, g.UnitPrice)
		assert.True(t, dec(w.qty*w.price).Equal(g.TotalCost), "line %d total cost", i)
		assert.Equal(t, w.source, g.Source, "line %d source", i)
	}
}
