package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS selections")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewStore(db)
	require.NoError(t, err)
	store.clock = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return store, mock
}

func sampleRun(id string, createdAt time.Time) *entities.AllocationRun {
	lines := []entities.AllocationLine{
		entities.NewAllocationLine("P3", "SupplierC", decimal.NewFromInt(3), decimal.RequireFromString("8.25"), entities.SourceManualPartial),
		entities.NewAllocationLine("P3", "SupplierD", decimal.NewFromInt(7), decimal.NewFromInt(3), entities.SourceAutoRemaining),
		entities.NewShortageLine("P2", decimal.NewFromInt(2)),
		entities.NewNotAvailableLine("P5"),
	}
	return &entities.AllocationRun{
		ID:         id,
		CreatedAt:  createdAt,
		Selections: entities.SupplierSelection{"P3": "SupplierC"},
		Lines:      lines,
		Digest:     entities.ComputeAllocationDigest(lines),
	}
}

func TestNewStore_MigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only database"))

	_, err = NewStore(db)
	assert.ErrorContains(t, err, "read-only database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetPinUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO selections (part_number, supplier, updated_at)")).
		WithArgs("P1", "SupplierA", "2026-05-01T12:00:00.000000000Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SetPin(context.Background(), "P1", "SupplierA"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSelectionsQueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT part_number, supplier FROM selections")).
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetSelections(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRunRollsBackOnLineFailure(t *testing.T) {
	store, mock := newMockStore(t)
	run := sampleRun("run-1", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocation_runs")).
		WithArgs("run-1", "2026-05-01T12:00:00.000000000Z", run.Digest, `{"P3":"SupplierC"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocation_lines")).
		WithArgs("run-1", 0, "P3", "SupplierC", "3", "8.25", "24.75", string(entities.SourceManualPartial)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.SaveRun(context.Background(), run)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, digest, selections FROM allocation_runs")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "digest", "selections"}))

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InMemorySelections(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.SetPin(ctx, "P1", "SupplierA"))
	require.NoError(t, store.SetPin(ctx, "P2", "SupplierB"))
	require.NoError(t, store.SetPin(ctx, "P1", "SupplierC"))

	selections, err := store.GetSelections(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SupplierSelection{"P1": "SupplierC", "P2": "SupplierB"}, selections)

	require.NoError(t, store.ClearPin(ctx, "P1"))
	selections, err = store.GetSelections(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SupplierSelection{"P2": "SupplierB"}, selections)

	require.NoError(t, store.ClearAll(ctx))
	selections, err = store.GetSelections(ctx)
	require.NoError(t, err)
	assert.Empty(t, selections)
}

func TestStore_InMemoryRuns(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.LatestRun(ctx)
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	first := sampleRun("run-1", base)
	second := sampleRun("run-2", base.Add(1500*time.Millisecond))
	second.Selections = nil
	second.Lines = nil

	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))
	assert.Error(t, store.SaveRun(ctx, sampleRun("run-1", base)))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Equal(t, first.Selections, got.Selections)
	require.Len(t, got.Lines, len(first.Lines))
	for i, line := range first.Lines {
		assert.Equal(t, line.PartNumber, got.Lines[i].PartNumber)
		assert.Equal(t, line.Supplier, got.Lines[i].Supplier)
		assert.Equal(t, line.Source, got.Lines[i].Source)
		assert.True(t, line.QtyAllocated.Equal(got.Lines[i].QtyAllocated))
		assert.True(t, line.TotalCost.Equal(got.Lines[i].TotalCost))
	}
	assert.Equal(t, first.Digest, entities.ComputeAllocationDigest(got.Lines))

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)
	assert.Empty(t, latest.Lines)
	assert.NotNil(t, latest.Selections)

	_, err = store.GetRun(ctx, "run-404")
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
}

func TestStore_PinsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoteopt.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetPin(ctx, "P4", "SupplierE"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	selections, err := reopened.GetSelections(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SupplierSelection{"P4": "SupplierE"}, selections)
}
