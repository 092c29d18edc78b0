package repositories

import "github.com/vsinha/quoteopt/pkg/domain/entities"

// OrderRepository provides access to the loaded order
type OrderRepository interface {
	GetOrders() ([]*entities.OrderLine, error)
	GetOrder(partNumber entities.PartNumber) (*entities.OrderLine, error)
	LoadOrders(orders []*entities.OrderLine) error
}
