package memory

import (
	"fmt"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

// OrderRepository provides in-memory order storage
type OrderRepository struct {
	orders   []entities.OrderLine
	ordersIx map[entities.PartNumber]int
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository(expectedLines int) *OrderRepository {
	return &OrderRepository{
		orders:   make([]entities.OrderLine, 0, expectedLines),
		ordersIx: make(map[entities.PartNumber]int, expectedLines),
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// LoadOrders replaces the stored order. The first line for a part wins.
func (r *OrderRepository) LoadOrders(orders []*entities.OrderLine) error {
	r.orders = r.orders[:0]
	r.ordersIx = make(map[entities.PartNumber]int, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		r.AddOrder(*order)
	}
	return nil
}

// AddOrder appends an order line unless the part is already present
func (r *OrderRepository) AddOrder(order entities.OrderLine) bool {
	if _, exists := r.ordersIx[order.PartNumber]; exists {
		return false
	}
	r.ordersIx[order.PartNumber] = len(r.orders)
	r.orders = append(r.orders, order)
	return true
}

// GetOrder returns the order line for a part number
func (r *OrderRepository) GetOrder(partNumber entities.PartNumber) (*entities.OrderLine, error) {
	index, exists := r.ordersIx[partNumber]
	if !exists {
		return nil, fmt.Errorf("order line not found: %s", partNumber)
	}
	line := r.orders[index]
	return &line, nil
}

// GetOrders returns all order lines in load order
func (r *OrderRepository) GetOrders() ([]*entities.OrderLine, error) {
	orders := make([]*entities.OrderLine, 0, len(r.orders))
	for i := range r.orders {
		line := r.orders[i]
		orders = append(orders, &line)
	}
	return orders, nil
}
