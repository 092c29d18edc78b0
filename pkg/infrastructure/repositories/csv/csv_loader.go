package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/services"
)

const utf8BOM = "\ufeff"

// Loader reads order, quote and pin files into normalized records
type Loader struct {
	normalizer *services.RecordNormalizer
}

// NewLoader creates a new CSV loader
func NewLoader(normalizer *services.RecordNormalizer) *Loader {
	return &Loader{normalizer: normalizer}
}

// LoadOrders loads the order file
func (l *Loader) LoadOrders(filename string) ([]*entities.OrderLine, *services.NormalizeReport, error) {
	table, err := ReadTable(filename)
	if err != nil {
		return nil, nil, err
	}
	return l.normalizer.NormalizeOrders(table)
}

// LoadQuotes loads one quote file per supplier. The supplier is taken from each file name.
func (l *Loader) LoadQuotes(filenames []string) ([]*entities.QuoteOffer, *services.NormalizeReport, error) {
	if len(filenames) == 0 {
		return nil, nil, fmt.Errorf("no quote files given")
	}
	tables := make([]services.RawTable, 0, len(filenames))
	for _, filename := range filenames {
		table, err := ReadTable(filename)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, table)
	}
	return l.normalizer.NormalizeQuotes(tables)
}

// LoadPins loads a saved pin file. A missing file yields no pins.
func (l *Loader) LoadPins(filename string) (entities.SupplierSelection, *services.NormalizeReport, error) {
	table, err := ReadTable(filename)
	if errors.Is(err, os.ErrNotExist) {
		return entities.SupplierSelection{}, &services.NormalizeReport{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return l.normalizer.NormalizePins(table)
}

// SavePins writes pins as a part,supplier CSV sorted by part
func SavePins(filename string, selections entities.SupplierSelection) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create pins file %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"part_number", "supplier"}); err != nil {
		return fmt.Errorf("failed to write pins header: %w", err)
	}
	for _, part := range selections.Parts() {
		if err := writer.Write([]string{string(part), string(selections[part])}); err != nil {
			return fmt.Errorf("failed to write pin for %s: %w", part, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush pins file %s: %w", filename, err)
	}
	return file.Close()
}

// QuoteFilesInDir lists the .csv files in dir, sorted by name
func QuoteFilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no quote files found in %s", dir)
	}
	return files, nil
}

// ReadTable reads a CSV file into a raw table. Rows may have any width and
// fully blank rows are skipped.
func ReadTable(filename string) (services.RawTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return services.RawTable{}, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	table, err := readTable(file)
	if err != nil {
		return services.RawTable{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	table.Source = filename
	return table, nil
}

func readTable(r io.Reader) (services.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return services.RawTable{}, err
	}
	if len(records) == 0 {
		return services.RawTable{}, fmt.Errorf("file is empty")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	return services.RawTable{Header: header, Rows: rows}, nil
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
