package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/quoteopt/pkg/application/dto"
	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/services"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
	// Reports holds normalization reports keyed by input kind (orders, quotes, pins).
	Reports map[string]*services.NormalizeReport
	// Writer receives text output and JSON when no OutputDir is set. Defaults to stdout.
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate creates output in the specified format
func Generate(result *dto.AllocationResult, config Config) error {
	if result == nil || result.Run == nil {
		return fmt.Errorf("no allocation result to output")
	}

	switch config.Format {
	case "", "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.AllocationResult, config Config) error {
	w := config.writer()
	summary := result.Summary

	fmt.Fprintf(w, "📊 Allocation Summary\n")
	fmt.Fprintf(w, "=====================\n\n")
	fmt.Fprintf(w, "Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Parts: %d (fully allocated %d, partial %d, not available %d, pinned %d)\n",
		summary.TotalParts, summary.FullyAllocated, summary.PartiallyAllocated, summary.NotAvailable, summary.ManuallyPinned)
	fmt.Fprintf(w, "Allocated Qty: %s\n", summary.TotalAllocatedQty)
	fmt.Fprintf(w, "Shortage Qty: %s\n", summary.ShortageQty)
	fmt.Fprintf(w, "Total Cost: %s\n", money(summary.TotalCost))
	if config.RunTime > 0 {
		fmt.Fprintf(w, "Run Time: %v\n", config.RunTime)
	}
	fmt.Fprintln(w)

	if len(result.Selections()) > 0 {
		cmp := result.CostComparison
		fmt.Fprintf(w, "💰 Cost Comparison:\n")
		fmt.Fprintf(w, "  Auto-optimized: %s\n", money(cmp.AutoCost))
		fmt.Fprintf(w, "  With pins:      %s\n", money(cmp.ManualCost))
		fmt.Fprintf(w, "  Difference:     %s\n\n", money(cmp.Difference))
	}

	lines := allocation.ForExport(result.Lines())
	if len(lines) > 0 {
		fmt.Fprintf(w, "📋 Allocations:\n")
		fmt.Fprintf(w, "%-15s %-20s %-10s %-10s %-12s %-26s\n",
			"Part Number", "Supplier", "Qty", "Price", "Total", "Source")
		fmt.Fprintf(w, "%-15s %-20s %-10s %-10s %-12s %-26s\n",
			"---------------", "--------------------", "----------", "----------", "------------", "--------------------------")
		for _, line := range lines {
			fmt.Fprintf(w, "%-15s %-20s %-10s %-10s %-12s %-26s\n",
				line.PartNumber,
				line.Supplier,
				line.QtyAllocated,
				money(line.UnitPrice),
				money(line.TotalCost),
				line.Source)
		}
		fmt.Fprintln(w)
	}

	if len(result.SupplierTotals) > 0 {
		fmt.Fprintf(w, "🏭 Suppliers:\n")
		fmt.Fprintf(w, "%-20s %-6s %-10s %-12s\n", "Supplier", "Lines", "Qty", "Cost")
		fmt.Fprintf(w, "%-20s %-6s %-10s %-12s\n", "--------------------", "------", "----------", "------------")
		for _, total := range result.SupplierTotals {
			fmt.Fprintf(w, "%-20s %-6d %-10s %-12s\n", total.Supplier, total.Lines, total.Qty, money(total.Cost))
		}
		fmt.Fprintln(w)
	}

	if summary.NotAvailable > 0 || summary.ShortageQty.IsPositive() {
		fmt.Fprintf(w, "⚠️  Unsupplied:\n")
		rows, qty := unsuppliedRows(result)
		for _, row := range rows {
			fmt.Fprintf(w, "  %-15s %s\n", row[0], row[1])
		}
		fmt.Fprintf(w, "  %-15s %s\n\n", "Total", qty)
	}

	if config.Verbose {
		writeReports(w, config.Reports)
	}

	if config.OutputDir != "" {
		paths, err := writeSheets(BuildSheets(result), config.OutputDir)
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(w, "💾 Reports saved to: %s (%d files)\n", config.OutputDir, len(paths))
		}
	}

	return nil
}

func writeReports(w io.Writer, reports map[string]*services.NormalizeReport) {
	if len(reports) == 0 {
		return
	}
	kinds := make([]string, 0, len(reports))
	for kind := range reports {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	fmt.Fprintf(w, "🧹 Input Normalization:\n")
	for _, kind := range kinds {
		r := reports[kind]
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "  %-7s read %d, accepted %d, dropped %d (no part %d, bad qty %d, bad price %d, bad supplier %d, duplicate %d)\n",
			kind, r.RowsRead, r.Accepted, r.Dropped(),
			r.MissingPartNumber, r.InvalidQuantity, r.InvalidPrice, r.InvalidSupplier, r.Duplicates)
		if len(r.UnmappedColumns) > 0 {
			fmt.Fprintf(w, "          ignored columns: %s\n", strings.Join(r.UnmappedColumns, ", "))
		}
	}
	fmt.Fprintln(w)
}

type jsonReport struct {
	RunID          string                               `json:"run_id"`
	CreatedAt      time.Time                            `json:"created_at"`
	Digest         string                               `json:"digest"`
	Selections     entities.SupplierSelection           `json:"selections"`
	Summary        allocation.Summary                   `json:"summary"`
	CostComparison allocation.CostComparison            `json:"cost_comparison"`
	SupplierTotals []allocation.SupplierTotal           `json:"supplier_totals"`
	Lines          []entities.AllocationLine            `json:"lines"`
	Normalization  map[string]*services.NormalizeReport `json:"normalization,omitempty"`
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.AllocationResult, config Config) error {
	report := jsonReport{
		RunID:          result.Run.ID,
		CreatedAt:      result.Run.CreatedAt,
		Digest:         result.Run.Digest,
		Selections:     result.Selections(),
		Summary:        result.Summary,
		CostComparison: result.CostComparison,
		SupplierTotals: result.SupplierTotals,
		Lines:          allocation.ForExport(result.Lines()),
		Normalization:  config.Reports,
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(config.writer(), string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "allocation.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes every report sheet as its own CSV file
func generateCSVOutput(result *dto.AllocationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	paths, err := writeSheets(BuildSheets(result), config.OutputDir)
	if err != nil {
		return err
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to:\n")
		for _, path := range paths {
			fmt.Fprintf(config.writer(), "  %s\n", path)
		}
	}
	return nil
}

func writeSheets(sheets []SheetResult, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		path := filepath.Join(dir, sheetFileName(sheet.Name))
		if err := writeSheetCSV(sheet, path); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", sheet.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSheetCSV(sheet SheetResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if sheet.Header != nil {
		if err := writer.Write(sheet.Header); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(sheet.Rows); err != nil {
		return err
	}
	return file.Close()
}

// sheetFileName turns a sheet name into a file name: "Order List" -> "order_list.csv"
func sheetFileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".csv"
}
