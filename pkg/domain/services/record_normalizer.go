package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

// Field is a canonical input column
type Field string

const (
	FieldPartNumber   Field = "PartNumber"
	FieldQtyRequired  Field = "QtyRequired"
	FieldUnitPrice    Field = "UnitPrice"
	FieldAvailableQty Field = "AvailableQty"
	FieldSupplier     Field = "Supplier"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoValidOrders  = errors.New("no valid orders found after filtering")
	ErrNoValidQuotes  = errors.New("no valid quotes found after filtering")
)

// DefaultAliases maps known column spellings onto canonical fields.
// Keys are matched after trimming and case folding.
var DefaultAliases = map[string]Field{
	"part_number":   FieldPartNumber,
	"part number":   FieldPartNumber,
	"partnumber":    FieldPartNumber,
	"part":          FieldPartNumber,
	"qty_required":  FieldQtyRequired,
	"qty required":  FieldQtyRequired,
	"qtyrequired":   FieldQtyRequired,
	"quantity":      FieldQtyRequired,
	"qty":           FieldQtyRequired,
	"unit_price":    FieldUnitPrice,
	"unit price":    FieldUnitPrice,
	"unitprice":     FieldUnitPrice,
	"price":         FieldUnitPrice,
	"available_qty": FieldAvailableQty,
	"available qty": FieldAvailableQty,
	"availableqty":  FieldAvailableQty,
	"available":     FieldAvailableQty,
	"stock":         FieldAvailableQty,
	"supplier":      FieldSupplier,
	"vendor":        FieldSupplier,
	"company":       FieldSupplier,
}

var (
	requiredOrderFields = []Field{FieldPartNumber, FieldQtyRequired}
	requiredQuoteFields = []Field{FieldPartNumber, FieldUnitPrice, FieldAvailableQty}
	requiredPinFields   = []Field{FieldPartNumber, FieldSupplier}
)

// RawTable is an input sheet before normalization
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// NormalizeReport counts what happened to input rows
type NormalizeReport struct {
	RowsRead          int
	Accepted          int
	MissingPartNumber int
	InvalidQuantity   int
	InvalidPrice      int
	InvalidSupplier   int
	Duplicates        int
	UnmappedColumns   []string
}

// Dropped returns the number of rows that were discarded
func (r *NormalizeReport) Dropped() int {
	return r.MissingPartNumber + r.InvalidQuantity + r.InvalidPrice + r.InvalidSupplier + r.Duplicates
}

// RecordNormalizer maps heterogeneous input tables onto orders and quote offers
type RecordNormalizer struct {
	aliases map[string]Field
}

// NewRecordNormalizer creates a normalizer using the default alias table plus extra aliases
// keyed by canonical field name
func NewRecordNormalizer(extra map[string][]string) (*RecordNormalizer, error) {
	aliases := make(map[string]Field, len(DefaultAliases))
	for alias, field := range DefaultAliases {
		aliases[foldHeader(alias)] = field
	}

	for fieldName, names := range extra {
		field, ok := parseField(fieldName)
		if !ok {
			return nil, fmt.Errorf("unknown canonical field %q in column aliases", fieldName)
		}
		for _, name := range names {
			aliases[foldHeader(name)] = field
		}
	}

	return &RecordNormalizer{aliases: aliases}, nil
}

// NormalizeOrders converts an order table into order lines, one per distinct part.
// The first row for a part is kept.
func (n *RecordNormalizer) NormalizeOrders(table RawTable) ([]*entities.OrderLine, *NormalizeReport, error) {
	columns, unmapped := n.mapHeader(table.Header)
	if err := checkRequired(table.Source, columns, requiredOrderFields); err != nil {
		return nil, nil, err
	}

	report := &NormalizeReport{UnmappedColumns: unmapped}
	seen := make(map[entities.PartNumber]bool)
	var orders []*entities.OrderLine

	for _, row := range table.Rows {
		report.RowsRead++

		partNumber := entities.PartNumber(cell(row, columns[FieldPartNumber]))
		if partNumber == "" {
			report.MissingPartNumber++
			continue
		}

		qty := coerceNumber(cell(row, columns[FieldQtyRequired]))
		order, err := entities.NewOrderLine(partNumber, qty)
		if err != nil {
			report.InvalidQuantity++
			continue
		}

		if seen[partNumber] {
			report.Duplicates++
			continue
		}
		seen[partNumber] = true

		orders = append(orders, order)
		report.Accepted++
	}

	if len(orders) == 0 {
		return nil, report, ErrNoValidOrders
	}

	return orders, report, nil
}

// NormalizeQuotes converts quote tables into offers. Each table's supplier is derived
// from its source file name, overriding any supplier column. The first offer for a
// (part, supplier) pair is kept.
func (n *RecordNormalizer) NormalizeQuotes(tables []RawTable) ([]*entities.QuoteOffer, *NormalizeReport, error) {
	type offerKey struct {
		part     entities.PartNumber
		supplier entities.SupplierID
	}

	report := &NormalizeReport{}
	seen := make(map[offerKey]bool)
	var offers []*entities.QuoteOffer

	for _, table := range tables {
		supplier, err := SupplierFromFileName(table.Source)
		if err != nil {
			return nil, nil, err
		}
		if entities.IsSentinelSupplier(supplier) {
			return nil, nil, fmt.Errorf("quote file %s: supplier name %q is reserved", table.Source, supplier)
		}

		columns, unmapped := n.mapHeader(table.Header)
		if err := checkRequired(table.Source, columns, requiredQuoteFields); err != nil {
			return nil, nil, err
		}
		report.UnmappedColumns = append(report.UnmappedColumns, unmapped...)

		for _, row := range table.Rows {
			report.RowsRead++

			partNumber := entities.PartNumber(cell(row, columns[FieldPartNumber]))
			if partNumber == "" {
				report.MissingPartNumber++
				continue
			}

			price := coerceNumber(cell(row, columns[FieldUnitPrice]))
			if !price.IsPositive() {
				report.InvalidPrice++
				continue
			}

			qty := coerceNumber(cell(row, columns[FieldAvailableQty]))
			if !qty.IsPositive() {
				report.InvalidQuantity++
				continue
			}

			key := offerKey{part: partNumber, supplier: supplier}
			if seen[key] {
				report.Duplicates++
				continue
			}
			seen[key] = true

			offer, err := entities.NewQuoteOffer(partNumber, supplier, price, qty)
			if err != nil {
				return nil, nil, fmt.Errorf("quote file %s: %w", table.Source, err)
			}
			offers = append(offers, offer)
			report.Accepted++
		}
	}

	if len(offers) == 0 {
		return nil, report, ErrNoValidQuotes
	}

	return offers, report, nil
}

// NormalizePins reads a saved pin table (part, supplier). Rows without both values
// or naming a reserved supplier are dropped. The first pin for a part is kept.
func (n *RecordNormalizer) NormalizePins(table RawTable) (entities.SupplierSelection, *NormalizeReport, error) {
	columns, unmapped := n.mapHeader(table.Header)
	if err := checkRequired(table.Source, columns, requiredPinFields); err != nil {
		return nil, nil, err
	}

	report := &NormalizeReport{UnmappedColumns: unmapped}
	selections := entities.SupplierSelection{}

	for _, row := range table.Rows {
		report.RowsRead++

		partNumber := entities.PartNumber(cell(row, columns[FieldPartNumber]))
		if partNumber == "" {
			report.MissingPartNumber++
			continue
		}
		supplier := entities.SupplierID(cell(row, columns[FieldSupplier]))
		if supplier == "" || entities.IsSentinelSupplier(supplier) {
			report.InvalidSupplier++
			continue
		}
		if _, exists := selections[partNumber]; exists {
			report.Duplicates++
			continue
		}
		selections[partNumber] = supplier
		report.Accepted++
	}

	return selections, report, nil
}

// SupplierFromFileName derives the supplier name from a quote file path:
// the base name up to its first dot.
func SupplierFromFileName(path string) (entities.SupplierID, error) {
	base := filepath.Base(path)
	name, _, _ := strings.Cut(base, ".")
	name = strings.TrimSpace(name)
	if name == "" || name == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive supplier name from file %q", path)
	}
	return entities.SupplierID(name), nil
}

// mapHeader resolves each header cell to a canonical field. The first column
// matching a field wins; columns matching nothing are returned as unmapped.
func (n *RecordNormalizer) mapHeader(header []string) (map[Field]int, []string) {
	columns := make(map[Field]int)
	var unmapped []string

	for i, name := range header {
		field, ok := n.aliases[foldHeader(name)]
		if !ok {
			unmapped = append(unmapped, strings.TrimSpace(name))
			continue
		}
		if _, exists := columns[field]; !exists {
			columns[field] = i
		}
	}

	return columns, unmapped
}

func checkRequired(source string, columns map[Field]int, required []Field) error {
	var missing []string
	for _, field := range required {
		if _, ok := columns[field]; !ok {
			missing = append(missing, string(field))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s: %w: %s", source, ErrMissingColumns, strings.Join(missing, ", "))
}

func parseField(name string) (Field, bool) {
	for _, field := range []Field{FieldPartNumber, FieldQtyRequired, FieldUnitPrice, FieldAvailableQty, FieldSupplier} {
		if foldHeader(string(field)) == foldHeader(name) {
			return field, true
		}
	}
	return "", false
}

func foldHeader(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// coerceNumber parses a numeric cell, treating anything unparsable as zero
func coerceNumber(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
