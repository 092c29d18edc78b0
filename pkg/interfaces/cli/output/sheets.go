package output

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/application/dto"
	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

const (
	shortNameLen = 10
	notAvailable = "N/A"
)

// Sheet names
const (
	SheetAllocation   = "Allocation"
	SheetOrderList    = "Order List"
	SheetSuppliers    = "Suppliers"
	SheetNotAvailable = "Not Available"
)

// SheetResult is one tabular report view. Header is nil for free-form sheets.
// Err is set when the view could not be built and Rows hold a placeholder message.
type SheetResult struct {
	Name   string
	Header []string
	Rows   [][]string
	Err    error
}

type sheetBuilder func(result *dto.AllocationResult) (SheetResult, error)

// BuildSheets builds every report view. A view that fails is replaced by a
// placeholder sheet; the others are still returned.
func BuildSheets(result *dto.AllocationResult) []SheetResult {
	builders := []struct {
		name  string
		build sheetBuilder
	}{
		{SheetAllocation, AllocationSheet},
		{SheetOrderList, OrderListSheet},
		{SheetSuppliers, SuppliersSheet},
		{SheetNotAvailable, NotAvailableSheet},
	}

	sheets := make([]SheetResult, 0, len(builders))
	for _, b := range builders {
		sheets = append(sheets, safeBuild(b.name, b.build, result))
	}

	orders, err := SupplierOrderSheets(result)
	if err != nil {
		return append(sheets, placeholder("Supplier Orders", err))
	}
	return append(sheets, orders...)
}

func safeBuild(name string, build sheetBuilder, result *dto.AllocationResult) (sheet SheetResult) {
	defer func() {
		if r := recover(); r != nil {
			sheet = placeholder(name, fmt.Errorf("panic building sheet: %v", r))
		}
	}()

	sheet, err := build(result)
	if err != nil {
		return placeholder(name, err)
	}
	return sheet
}

func placeholder(name string, err error) SheetResult {
	return SheetResult{
		Name:   name + " Error",
		Header: []string{"Error"},
		Rows:   [][]string{{fmt.Sprintf("Could not create %s sheet: %v", name, err)}},
		Err:    err,
	}
}

func requireResult(result *dto.AllocationResult) error {
	if result == nil || result.Run == nil {
		return fmt.Errorf("no allocation run")
	}
	return nil
}

// AllocationSheet lists every allocation line with export supplier labels
func AllocationSheet(result *dto.AllocationResult) (SheetResult, error) {
	if err := requireResult(result); err != nil {
		return SheetResult{}, err
	}

	sheet := SheetResult{
		Name:   SheetAllocation,
		Header: []string{"Part Number", "Supplier", "Qty Allocated", "Unit Price", "Total Cost", "Allocation Source"},
	}
	for _, line := range allocation.ForExport(result.Lines()) {
		sheet.Rows = append(sheet.Rows, []string{
			string(line.PartNumber),
			string(line.Supplier),
			line.QtyAllocated.String(),
			money(line.UnitPrice),
			money(line.TotalCost),
			string(line.Source),
		})
	}
	return sheet, nil
}

// OrderListSheet shows each allocation line next to every supplier's quote for the part
func OrderListSheet(result *dto.AllocationResult) (SheetResult, error) {
	if err := requireResult(result); err != nil {
		return SheetResult{}, err
	}

	suppliers := quotingSuppliers(result.Offers)
	header := []string{"Part Number", "Qty Required", "Allocated Qty", "Selected Supplier", "Selected Price", "Total Cost", "Allocation Source"}
	for _, prefix := range columnPrefixes(suppliers) {
		header = append(header, prefix+"_Price", prefix+"_Qty")
	}

	sheet := SheetResult{Name: SheetOrderList, Header: header}
	byPart := allocation.LinesByPart(allocation.ForExport(result.Lines()))
	offersByPart := make(map[entities.PartNumber][]entities.QuoteOffer)
	for _, offer := range result.Offers {
		offersByPart[offer.PartNumber] = append(offersByPart[offer.PartNumber], offer)
	}

	allocatedSum := decimal.Zero
	costSum := decimal.Zero
	for _, order := range result.Orders {
		quotes := quoteColumns(suppliers, offersByPart[order.PartNumber])

		lines := byPart[order.PartNumber]
		if len(lines) == 0 {
			row := []string{string(order.PartNumber), order.QtyRequired.String(), "0", "Not Selected", notAvailable, money(decimal.Zero), "Not Allocated"}
			sheet.Rows = append(sheet.Rows, append(row, quotes...))
			continue
		}

		for _, line := range lines {
			price := notAvailable
			if line.UnitPrice.IsPositive() {
				price = money(line.UnitPrice)
			}
			row := []string{
				string(order.PartNumber),
				order.QtyRequired.String(),
				line.QtyAllocated.String(),
				string(line.Supplier),
				price,
				money(line.TotalCost),
				string(line.Source),
			}
			sheet.Rows = append(sheet.Rows, append(row, quotes...))
			allocatedSum = allocatedSum.Add(line.QtyAllocated)
			costSum = costSum.Add(line.TotalCost)
		}
	}

	if len(sheet.Rows) > 0 {
		totals := make([]string, len(header))
		totals[0] = "TOTALS"
		totals[2] = allocatedSum.String()
		totals[5] = money(costSum)
		sheet.Rows = append(sheet.Rows, make([]string, len(header)), totals)
	}
	return sheet, nil
}

// SuppliersSheet groups supplied lines per supplier with subtotals, a grand total,
// and a closing N/A section for shortages and unquoted parts.
func SuppliersSheet(result *dto.AllocationResult) (SheetResult, error) {
	if err := requireResult(result); err != nil {
		return SheetResult{}, err
	}

	sheet := SheetResult{Name: SheetSuppliers}
	blank := []string{"", "", "", ""}
	grandQty := decimal.Zero
	grandCost := decimal.Zero

	byPart := allocation.LinesByPart(result.Lines())
	for _, total := range allocation.SupplierTotals(result.Lines()) {
		sheet.Rows = append(sheet.Rows,
			[]string{total.Supplier.ShortName(shortNameLen), "", "", ""},
			[]string{"Part Number", "Qty Ordered", "Unit Price", "Total Cost"},
		)
		for _, order := range result.Orders {
			for _, line := range byPart[order.PartNumber] {
				if line.Supplier != total.Supplier {
					continue
				}
				sheet.Rows = append(sheet.Rows, []string{
					string(line.PartNumber),
					line.QtyAllocated.String(),
					money(line.UnitPrice),
					money(line.TotalCost),
				})
			}
		}
		sheet.Rows = append(sheet.Rows,
			[]string{"SUBTOTAL", total.Qty.String(), "", money(total.Cost)},
			blank,
		)
		grandQty = grandQty.Add(total.Qty)
		grandCost = grandCost.Add(total.Cost)
	}

	if grandQty.IsPositive() {
		sheet.Rows = append(sheet.Rows,
			[]string{"GRAND TOTAL", grandQty.String(), "", money(grandCost)},
			blank,
		)
	}

	naRows, naQty := unsuppliedRows(result)
	if len(naRows) > 0 {
		sheet.Rows = append(sheet.Rows, []string{notAvailable, "", "", ""})
		sheet.Rows = append(sheet.Rows, naRows...)
		sheet.Rows = append(sheet.Rows, []string{"SUBTOTAL - N/A", naQty.String(), "", notAvailable})
	}

	orderQty := decimal.Zero
	for _, order := range result.Orders {
		orderQty = orderQty.Add(order.QtyRequired)
	}
	sheet.Rows = append(sheet.Rows, blank, []string{"TOTAL QTY", orderQty.String(), "", ""})
	return sheet, nil
}

// unsuppliedRows lists shortage lines first, then unquoted parts without a shortage line
func unsuppliedRows(result *dto.AllocationResult) ([][]string, decimal.Decimal) {
	var rows [][]string
	total := decimal.Zero
	short := make(map[entities.PartNumber]bool)

	for _, line := range result.Lines() {
		if line.Source != entities.SourceShortage {
			continue
		}
		short[line.PartNumber] = true
		rows = append(rows, []string{string(line.PartNumber), line.QtyAllocated.String(), notAvailable, notAvailable})
		total = total.Add(line.QtyAllocated)
	}

	for _, order := range unquotedOrders(result) {
		if short[order.PartNumber] {
			continue
		}
		rows = append(rows, []string{string(order.PartNumber), order.QtyRequired.String(), notAvailable, notAvailable})
		total = total.Add(order.QtyRequired)
	}
	return rows, total
}

// NotAvailableSheet lists ordered parts that no supplier quoted
func NotAvailableSheet(result *dto.AllocationResult) (SheetResult, error) {
	if err := requireResult(result); err != nil {
		return SheetResult{}, err
	}

	sheet := SheetResult{Name: SheetNotAvailable, Header: []string{"Part Number", "Qty Required", "Status"}}
	for _, order := range unquotedOrders(result) {
		sheet.Rows = append(sheet.Rows, []string{string(order.PartNumber), order.QtyRequired.String(), "No quotes available"})
	}
	return sheet, nil
}

// SupplierOrderSheets builds one purchase extract per real supplier, named order_<supplier>
func SupplierOrderSheets(result *dto.AllocationResult) ([]SheetResult, error) {
	if err := requireResult(result); err != nil {
		return nil, err
	}

	bySupplier := make(map[entities.SupplierID]*SheetResult)
	var names []entities.SupplierID
	for _, line := range result.Lines() {
		if !line.IsSupplied() {
			continue
		}
		sheet, ok := bySupplier[line.Supplier]
		if !ok {
			sheet = &SheetResult{
				Name:   "order_" + line.Supplier.FileSlug(),
				Header: []string{"Part Number", "Qty Allocated", "Unit Price", "Total Cost"},
			}
			bySupplier[line.Supplier] = sheet
			names = append(names, line.Supplier)
		}
		sheet.Rows = append(sheet.Rows, []string{
			string(line.PartNumber),
			line.QtyAllocated.String(),
			money(line.UnitPrice),
			money(line.TotalCost),
		})
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	sheets := make([]SheetResult, 0, len(names))
	for _, name := range names {
		sheets = append(sheets, *bySupplier[name])
	}
	return sheets, nil
}

func unquotedOrders(result *dto.AllocationResult) []entities.OrderLine {
	quoted := make(map[entities.PartNumber]bool)
	for _, offer := range result.Offers {
		quoted[offer.PartNumber] = true
	}
	var out []entities.OrderLine
	for _, order := range result.Orders {
		if !quoted[order.PartNumber] {
			out = append(out, order)
		}
	}
	return out
}

func quotingSuppliers(offers []entities.QuoteOffer) []entities.SupplierID {
	seen := make(map[entities.SupplierID]bool)
	var suppliers []entities.SupplierID
	for _, offer := range offers {
		if !seen[offer.Supplier] {
			seen[offer.Supplier] = true
			suppliers = append(suppliers, offer.Supplier)
		}
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i] < suppliers[j] })
	return suppliers
}

// columnPrefixes shortens supplier names for column headers. A short name
// already taken gets a ~2, ~3 ... suffix in supplier order.
func columnPrefixes(suppliers []entities.SupplierID) []string {
	taken := make(map[string]bool, len(suppliers))
	prefixes := make([]string, 0, len(suppliers))
	for _, supplier := range suppliers {
		short := supplier.ShortName(shortNameLen)
		prefix := short
		for n := 2; taken[prefix]; n++ {
			prefix = fmt.Sprintf("%s~%d", short, n)
		}
		taken[prefix] = true
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

func quoteColumns(suppliers []entities.SupplierID, offers []entities.QuoteOffer) []string {
	cols := make([]string, 0, 2*len(suppliers))
	for _, supplier := range suppliers {
		offer, ok := entities.FindOffer(offers, supplier)
		if !ok {
			cols = append(cols, notAvailable, notAvailable)
			continue
		}
		cols = append(cols, money(offer.UnitPrice), offer.AvailableQty.String())
	}
	return cols
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
