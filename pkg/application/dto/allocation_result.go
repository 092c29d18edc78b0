package dto

import (
	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// AllocationResult contains the complete output of one allocation run
type AllocationResult struct {
	Run            *entities.AllocationRun
	Orders         []entities.OrderLine
	Offers         []entities.QuoteOffer
	Summary        allocation.Summary
	CostComparison allocation.CostComparison
	SupplierTotals []allocation.SupplierTotal
}

// Lines returns the run's allocation lines, or nil when there is no run
func (r *AllocationResult) Lines() []entities.AllocationLine {
	if r == nil || r.Run == nil {
		return nil
	}
	return r.Run.Lines
}

// Selections returns the pins the run was computed from
func (r *AllocationResult) Selections() entities.SupplierSelection {
	if r == nil || r.Run == nil {
		return entities.SupplierSelection{}
	}
	return r.Run.Selections
}
