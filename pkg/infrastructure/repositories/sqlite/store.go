// Package sqlite persists operator pins and allocation runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"

	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements the selection and allocation run repositories
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

var (
	_ repositories.SelectionRepository     = (*Store)(nil)
	_ repositories.AllocationRunRepository = (*Store)(nil)
)

// Open opens (or creates) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	store, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an open database and creates the schema if needed
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db, clock: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS selections (
		part_number TEXT PRIMARY KEY,
		supplier TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS allocation_runs (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		digest TEXT NOT NULL,
		selections JSON NOT NULL
	);
	CREATE TABLE IF NOT EXISTS allocation_lines (
		run_id TEXT NOT NULL REFERENCES allocation_runs(run_id),
		seq INTEGER NOT NULL,
		part_number TEXT NOT NULL,
		supplier TEXT NOT NULL,
		qty_allocated TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		source TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *Store) GetSelections(ctx context.Context) (entities.SupplierSelection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT part_number, supplier FROM selections ORDER BY part_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	selections := entities.SupplierSelection{}
	for rows.Next() {
		var part, supplier string
		if err := rows.Scan(&part, &supplier); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		selections[entities.PartNumber(part)] = entities.SupplierID(supplier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return selections, nil
}

func (s *Store) SetPin(ctx context.Context, partNumber entities.PartNumber, supplier entities.SupplierID) error {
	query := `INSERT INTO selections (part_number, supplier, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(part_number) DO UPDATE SET supplier = excluded.supplier, updated_at = excluded.updated_at`

	updatedAt := s.clock().UTC().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, query, string(partNumber), string(supplier), updatedAt); err != nil {
		return fmt.Errorf("failed to upsert selection for %s: %w", partNumber, err)
	}
	return nil
}

func (s *Store) ClearPin(ctx context.Context, partNumber entities.PartNumber) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM selections WHERE part_number = ?`, string(partNumber)); err != nil {
		return fmt.Errorf("failed to delete selection for %s: %w", partNumber, err)
	}
	return nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM selections`); err != nil {
		return fmt.Errorf("failed to clear selections: %w", err)
	}
	return nil
}

// SaveRun stores the run and its lines in one transaction
func (s *Store) SaveRun(ctx context.Context, run *entities.AllocationRun) (err error) {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	selections, err := json.Marshal(run.Selections)
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO allocation_runs (run_id, created_at, digest, selections) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Digest, string(selections),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for i, line := range run.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO allocation_lines (run_id, seq, part_number, supplier, qty_allocated, unit_price, total_cost, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, string(line.PartNumber), string(line.Supplier),
			line.QtyAllocated.String(), line.UnitPrice.String(), line.TotalCost.String(), string(line.Source),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line %d of run %s: %w", i, run.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*entities.AllocationRun, error) {
	var (
		createdAt  string
		selections string
		run        = &entities.AllocationRun{ID: id}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, digest, selections FROM allocation_runs WHERE run_id = ?`, id,
	).Scan(&createdAt, &run.Digest, &selections)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("run %s has invalid created_at %q: %w", id, createdAt, err)
	}
	if err := json.Unmarshal([]byte(selections), &run.Selections); err != nil {
		return nil, fmt.Errorf("run %s has invalid selections: %w", id, err)
	}
	if run.Selections == nil {
		run.Selections = entities.SupplierSelection{}
	}

	if run.Lines, err = s.runLines(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) LatestRun(ctx context.Context) (*entities.AllocationRun, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM allocation_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return s.GetRun(ctx, id)
}

func (s *Store) runLines(ctx context.Context, id string) ([]entities.AllocationLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT part_number, supplier, qty_allocated, unit_price, total_cost, source
		FROM allocation_lines WHERE run_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of run %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	lines := make([]entities.AllocationLine, 0)
	for rows.Next() {
		var (
			line           entities.AllocationLine
			part, supplier string
			source         string
		)
		if err := rows.Scan(&part, &supplier, &line.QtyAllocated, &line.UnitPrice, &line.TotalCost, &source); err != nil {
			return nil, fmt.Errorf("failed to scan line of run %s: %w", id, err)
		}
		line.PartNumber = entities.PartNumber(part)
		line.Supplier = entities.SupplierID(supplier)
		line.Source = entities.AllocationSource(source)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
