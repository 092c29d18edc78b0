// Package session holds the operator's allocation session: the loaded order
// and quotes, the pins chosen so far, and the runs computed from them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/quoteopt/pkg/application/dto"
	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
	"github.com/vsinha/quoteopt/pkg/infrastructure/events"
)

var (
	// ErrUnknownPart is returned when a pin names a part that is not on the order
	ErrUnknownPart = errors.New("part is not on the order")
	// ErrNoQuote is returned when a pin names a supplier that did not quote the part
	ErrNoQuote = errors.New("supplier has no quote for part")
)

// Config holds the collaborators of a Session
type Config struct {
	Orders     repositories.OrderRepository
	Quotes     repositories.QuoteRepository
	Selections repositories.SelectionRepository
	Runs       repositories.AllocationRunRepository
	Events     events.Log
	Logger     *slog.Logger

	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// Session serializes pin commands against allocation runs.
// Commands take the write lock, Run takes the read lock for its snapshot.
type Session struct {
	mu sync.RWMutex

	orders     repositories.OrderRepository
	quotes     repositories.QuoteRepository
	selections repositories.SelectionRepository
	runs       repositories.AllocationRunRepository
	events     events.Log
	logger     *slog.Logger
	clock      func() time.Time
	newID      func() string
}

// New creates a session. Orders, Quotes, Selections and Runs are required.
func New(cfg Config) (*Session, error) {
	if cfg.Orders == nil || cfg.Quotes == nil {
		return nil, fmt.Errorf("session requires order and quote repositories")
	}
	if cfg.Selections == nil || cfg.Runs == nil {
		return nil, fmt.Errorf("session requires selection and run repositories")
	}
	if cfg.Events == nil {
		cfg.Events = events.NewMemoryLog()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Session{
		orders:     cfg.Orders,
		quotes:     cfg.Quotes,
		selections: cfg.Selections,
		runs:       cfg.Runs,
		events:     cfg.Events,
		logger:     cfg.Logger.With("component", "session"),
		clock:      cfg.Clock,
		newID:      cfg.NewID,
	}, nil
}

// SetPin pins a part to a supplier for subsequent runs
func (s *Session) SetPin(ctx context.Context, partNumber entities.PartNumber, supplier entities.SupplierID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.orders.GetOrder(partNumber); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPart, partNumber)
	}
	offers, err := s.quotes.GetOffersForPart(partNumber)
	if err != nil {
		return fmt.Errorf("failed to read offers for %s: %w", partNumber, err)
	}
	if _, ok := entities.FindOffer(derefOffers(offers), supplier); !ok {
		return fmt.Errorf("%w: %s for %s", ErrNoQuote, supplier, partNumber)
	}

	current, err := s.selections.GetSelections(ctx)
	if err != nil {
		return fmt.Errorf("failed to read selections: %w", err)
	}
	previous := current[partNumber]
	if err := s.selections.SetPin(ctx, partNumber, supplier); err != nil {
		return fmt.Errorf("failed to pin %s: %w", partNumber, err)
	}

	s.logger.Info("pin set", "part", partNumber, "supplier", supplier, "previous", previous)
	return s.append(events.SelectionsStream, events.PinSetEvent, events.PinSet{
		PartNumber: partNumber,
		Supplier:   supplier,
		Previous:   previous,
	})
}

// ClearPin returns a part to automatic allocation. Clearing an unpinned part is a no-op.
func (s *Session) ClearPin(ctx context.Context, partNumber entities.PartNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.selections.GetSelections(ctx)
	if err != nil {
		return fmt.Errorf("failed to read selections: %w", err)
	}
	supplier, pinned := current[partNumber]
	if !pinned {
		return nil
	}
	if err := s.selections.ClearPin(ctx, partNumber); err != nil {
		return fmt.Errorf("failed to clear pin for %s: %w", partNumber, err)
	}

	s.logger.Info("pin cleared", "part", partNumber, "supplier", supplier)
	return s.append(events.SelectionsStream, events.PinClearedEvent, events.PinCleared{
		PartNumber: partNumber,
		Supplier:   supplier,
	})
}

// ClearAll removes every pin
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.selections.GetSelections(ctx)
	if err != nil {
		return fmt.Errorf("failed to read selections: %w", err)
	}
	if err := s.selections.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear pins: %w", err)
	}

	s.logger.Info("pins reset", "cleared", len(current))
	return s.append(events.SelectionsStream, events.PinsResetEvent, events.PinsReset{Cleared: len(current)})
}

// Selections returns the current pins
func (s *Session) Selections(ctx context.Context) (entities.SupplierSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selections.GetSelections(ctx)
}

// Run consolidates the current order, quotes and pins into allocation lines
// and records the run.
func (s *Session) Run(ctx context.Context) (*dto.AllocationResult, error) {
	s.mu.RLock()
	orders, offers, selections, err := s.snapshot(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	start := s.clock()
	lines := allocation.Consolidate(orders, offers, selections)

	run := &entities.AllocationRun{
		ID:         s.newID(),
		CreatedAt:  start.UTC(),
		Selections: selections,
		Lines:      lines,
		Digest:     entities.ComputeAllocationDigest(lines),
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	result := &dto.AllocationResult{
		Run:            run,
		Orders:         orders,
		Offers:         offers,
		Summary:        allocation.Summarize(orders, lines),
		CostComparison: allocation.CompareCosts(orders, offers, selections),
		SupplierTotals: allocation.SupplierTotals(lines),
	}

	s.logger.Info("allocation completed",
		"run_id", run.ID,
		"parts", result.Summary.TotalParts,
		"lines", len(lines),
		"pinned", len(selections),
		"total_cost", result.Summary.TotalCost.StringFixed(2),
		"duration", s.clock().Sub(start),
	)
	if err := s.append(events.RunsStream, events.AllocationCompletedEvent, events.AllocationCompleted{
		RunID:       run.ID,
		Digest:      run.Digest,
		Lines:       len(lines),
		PinnedParts: len(selections),
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Quotes returns the offers for one part in load order
func (s *Session) Quotes(partNumber entities.PartNumber) ([]entities.QuoteOffer, error) {
	offers, err := s.quotes.GetOffersForPart(partNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read offers for %s: %w", partNumber, err)
	}
	return derefOffers(offers), nil
}

// History returns the selection audit trail in command order
func (s *Session) History() ([]events.Event, error) {
	return s.events.Stream(events.SelectionsStream, 1)
}

// AuditLog returns pin commands and completed runs after the given sequence
// number, interleaved in the order they happened
func (s *Session) AuditLog(afterSequence int) ([]events.Event, error) {
	return s.events.Since(afterSequence)
}

func (s *Session) snapshot(ctx context.Context) ([]entities.OrderLine, []entities.QuoteOffer, entities.SupplierSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	orderPtrs, err := s.orders.GetOrders()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read orders: %w", err)
	}
	offerPtrs, err := s.quotes.GetOffers()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read offers: %w", err)
	}
	selections, err := s.selections.GetSelections(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read selections: %w", err)
	}

	orders := make([]entities.OrderLine, 0, len(orderPtrs))
	for _, o := range orderPtrs {
		orders = append(orders, *o)
	}
	return orders, derefOffers(offerPtrs), selections.Clone(), nil
}

func (s *Session) append(stream, eventType string, data any) error {
	if _, err := s.events.Append(stream, eventType, data); err != nil {
		return fmt.Errorf("failed to record %s: %w", eventType, err)
	}
	return nil
}

func derefOffers(offers []*entities.QuoteOffer) []entities.QuoteOffer {
	out := make([]entities.QuoteOffer, 0, len(offers))
	for _, o := range offers {
		out = append(out, *o)
	}
	return out
}
