package memory

import (
	"context"
	"sync"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

// SelectionRepository keeps operator pins for the lifetime of the process
type SelectionRepository struct {
	mu         sync.RWMutex
	selections entities.SupplierSelection
}

func NewSelectionRepository() *SelectionRepository {
	return &SelectionRepository{selections: entities.SupplierSelection{}}
}

var _ repositories.SelectionRepository = (*SelectionRepository)(nil)

func (r *SelectionRepository) GetSelections(ctx context.Context) (entities.SupplierSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selections.Clone(), nil
}

func (r *SelectionRepository) SetPin(ctx context.Context, partNumber entities.PartNumber, supplier entities.SupplierID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[partNumber] = supplier
	return nil
}

func (r *SelectionRepository) ClearPin(ctx context.Context, partNumber entities.PartNumber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selections, partNumber)
	return nil
}

func (r *SelectionRepository) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = entities.SupplierSelection{}
	return nil
}
