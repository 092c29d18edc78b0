package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

// AllocationRunRepository keeps completed runs in insertion order
type AllocationRunRepository struct {
	mu   sync.RWMutex
	runs []entities.AllocationRun
	byID map[string]int
}

func NewAllocationRunRepository() *AllocationRunRepository {
	return &AllocationRunRepository{byID: make(map[string]int)}
}

var _ repositories.AllocationRunRepository = (*AllocationRunRepository)(nil)

func (r *AllocationRunRepository) SaveRun(ctx context.Context, run *entities.AllocationRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run == nil || run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	stored := *run
	stored.Selections = run.Selections.Clone()
	stored.Lines = append([]entities.AllocationLine(nil), run.Lines...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[run.ID]; exists {
		return fmt.Errorf("run %s already saved", run.ID)
	}
	r.byID[run.ID] = len(r.runs)
	r.runs = append(r.runs, stored)
	return nil
}

func (r *AllocationRunRepository) GetRun(ctx context.Context, id string) (*entities.AllocationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	run := r.runs[index]
	return &run, nil
}

func (r *AllocationRunRepository) LatestRun(ctx context.Context) (*entities.AllocationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.runs) == 0 {
		return nil, repositories.ErrRunNotFound
	}
	run := r.runs[len(r.runs)-1]
	return &run, nil
}
