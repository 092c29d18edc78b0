package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// ErrRunNotFound is returned when a run ID is unknown or no run was saved yet
var ErrRunNotFound = errors.New("allocation run not found")

// AllocationRunRepository persists completed allocation runs
type AllocationRunRepository interface {
	SaveRun(ctx context.Context, run *entities.AllocationRun) error
	GetRun(ctx context.Context, id string) (*entities.AllocationRun, error)
	LatestRun(ctx context.Context) (*entities.AllocationRun, error)
}
