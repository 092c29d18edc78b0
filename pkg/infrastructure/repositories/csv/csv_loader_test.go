package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/services"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	normalizer, err := services.NewRecordNormalizer(nil)
	require.NoError(t, err)
	return NewLoader(normalizer)
}

func TestLoader_LoadOrders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "order.csv", "\ufeffPart Number,Description,Qty Required\nP1,Bolt,10\n,,\nP2,Nut,4.5\nP3,Washer,n/a\n")

	orders, report, err := newTestLoader(t).LoadOrders(path)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, entities.PartNumber("P1"), orders[0].PartNumber)
	assert.True(t, decimal.RequireFromString("4.5").Equal(orders[1].QtyRequired))
	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 1, report.InvalidQuantity)
	assert.Equal(t, []string{"Description"}, report.UnmappedColumns)
}

func TestLoader_LoadOrders_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := newTestLoader(t)

	_, _, err := loader.LoadOrders(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := writeFile(t, dir, "empty.csv", "")
	_, _, err = loader.LoadOrders(empty)
	assert.Error(t, err)

	noQty := writeFile(t, dir, "noqty.csv", "part_number\nP1\n")
	_, _, err = loader.LoadOrders(noQty)
	assert.ErrorIs(t, err, services.ErrMissingColumns)
}

func TestLoader_LoadQuotesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SupplierB.csv", "Part Number,Unit Price,Available Qty\nP1,4,20\nP2,6,4\n")
	writeFile(t, dir, "SupplierA.quotes.CSV", "part,price,stock\nP2,5,4\n")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755))

	files, err := QuoteFilesInDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "SupplierA.quotes.CSV", filepath.Base(files[0]))

	offers, report, err := newTestLoader(t).LoadQuotes(files)
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.Equal(t, entities.SupplierID("SupplierA"), offers[0].Supplier)
	assert.Equal(t, entities.SupplierID("SupplierB"), offers[1].Supplier)
	assert.Equal(t, 3, report.Accepted)
}

func TestLoader_LoadQuotes_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := newTestLoader(t)

	_, _, err := loader.LoadQuotes(nil)
	assert.Error(t, err)

	_, err = QuoteFilesInDir(dir)
	assert.Error(t, err)

	_, err = QuoteFilesInDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "SupplierZ.csv", "Part Number,Unit Price,Available Qty\nP1,0,5\n")
	_, _, err = loader.LoadQuotes([]string{bad})
	assert.ErrorIs(t, err, services.ErrNoValidQuotes)
}

func TestPinsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pins.csv")
	loader := newTestLoader(t)

	pins, report, err := loader.LoadPins(path)
	require.NoError(t, err)
	assert.Empty(t, pins)
	assert.Zero(t, report.RowsRead)

	want := entities.SupplierSelection{"P4": "SupplierE", "P3": "Supplier, C"}
	require.NoError(t, SavePins(path, want))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "part_number,supplier\nP3,\"Supplier, C\"\nP4,SupplierE\n", string(content))

	got, _, err := loader.LoadPins(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadTable(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   int
		wantErr    bool
	}{
		{
			name:       "byte order mark stripped from first header",
			input:      "\ufeffpart,qty\nP1,2\n",
			wantHeader: []string{"part", "qty"},
			wantRows:   1,
		},
		{
			name:       "blank rows skipped",
			input:      "part,qty\n,\nP1,2\n  ,  \nP2,3\n",
			wantHeader: []string{"part", "qty"},
			wantRows:   2,
		},
		{
			name:       "ragged rows kept",
			input:      "part,qty,note\nP1,2\nP2,3,rush,extra\n",
			wantHeader: []string{"part", "qty", "note"},
			wantRows:   2,
		},
		{
			name:       "header only",
			input:      "part,qty\n",
			wantHeader: []string{"part", "qty"},
			wantRows:   0,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unterminated quote",
			input:   "part,qty\n\"P1,2\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := readTable(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got table with %d rows", len(table.Rows))
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to read table: %v", err)
			}

			if len(table.Header) != len(tt.wantHeader) {
				t.Fatalf("Expected %d header columns, got %d", len(tt.wantHeader), len(table.Header))
			}
			for i, column := range tt.wantHeader {
				if table.Header[i] != column {
					t.Errorf("Expected header column %d to be %q, got %q", i, column, table.Header[i])
				}
			}

			if len(table.Rows) != tt.wantRows {
				t.Errorf("Expected %d rows, got %d", tt.wantRows, len(table.Rows))
			}
		})
	}
}

func TestQuoteFilesInDir_Extensions(t *testing.T) {
	tests := []struct {
		filename string
		listed   bool
	}{
		{"SupplierA.csv", true},
		{"SupplierB.CSV", true},
		{"SupplierC.Csv", true},
		{"SupplierD.csv.bak", false},
		{"SupplierE.txt", false},
		{"csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.filename, "part,price,qty\nP1,1,1\n")
			writeFile(t, dir, "Anchor.csv", "part,price,qty\nP1,1,1\n")

			files, err := QuoteFilesInDir(dir)
			if err != nil {
				t.Fatalf("Failed to list quote files: %v", err)
			}

			found := false
			for _, file := range files {
				if filepath.Base(file) == tt.filename {
					found = true
				}
			}
			if found != tt.listed {
				t.Errorf("Expected %s listed=%v, got %v", tt.filename, tt.listed, found)
			}
		})
	}
}
