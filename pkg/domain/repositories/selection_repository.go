package repositories

import (
	"context"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// SelectionRepository stores operator pins. Pins outlive individual allocation runs.
type SelectionRepository interface {
	GetSelections(ctx context.Context) (entities.SupplierSelection, error)
	SetPin(ctx context.Context, partNumber entities.PartNumber, supplier entities.SupplierID) error
	ClearPin(ctx context.Context, partNumber entities.PartNumber) error
	ClearAll(ctx context.Context) error
}
