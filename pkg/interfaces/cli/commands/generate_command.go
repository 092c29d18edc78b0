package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Parts     int     // Number of order lines to generate
	Suppliers int     // Number of supplier quote files
	Coverage  float64 // Total quoted stock as a multiple of the required quantity
	QuoteRate float64 // Probability that a supplier quotes a given part
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Help      bool    // Show help
	Verbose   bool    // Verbose output

	Stdout io.Writer
}

// GenerateCommand writes an order and a set of supplier quotes for testing
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Parts <= 0 {
		config.Parts = 50
	}
	if config.Suppliers <= 0 {
		config.Suppliers = 4
	}
	if config.Coverage <= 0 {
		config.Coverage = 1.5
	}
	if config.QuoteRate <= 0 || config.QuoteRate > 1 {
		config.QuoteRate = 0.7
	}
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// scenarioPart is one generated order line with its reference price
type scenarioPart struct {
	PartNumber string
	Required   int
	ListPrice  decimal.Decimal
}

// scenarioQuote is one supplier's offer for a part
type scenarioQuote struct {
	PartNumber string
	UnitPrice  decimal.Decimal
	Available  int
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("validation error: must specify an output directory with -output")
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating scenario with %d parts, %d suppliers, %.1fx coverage\n",
			cmd.config.Parts,
			cmd.config.Suppliers,
			cmd.config.Coverage,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	quotesDir := filepath.Join(cmd.config.OutputDir, "quotes")
	if err := os.MkdirAll(quotesDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	parts := cmd.generateParts()

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📋 Generating order.csv...")
	}
	if err := cmd.writeOrder(parts); err != nil {
		return fmt.Errorf("failed to generate order: %w", err)
	}

	quotes := cmd.generateQuotes(parts)
	for i, supplierQuotes := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := supplierName(i)
		if cmd.config.Verbose {
			fmt.Fprintf(cmd.out, "🏷️  Generating quotes/%s.csv (%d offers)...\n", name, len(supplierQuotes))
		}
		if err := cmd.writeQuotes(filepath.Join(quotesDir, name+".csv"), supplierQuotes); err != nil {
			return fmt.Errorf("failed to generate quotes for %s: %w", name, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

// generateParts creates order lines with quantities skewed toward small buys
func (cmd *GenerateCommand) generateParts() []scenarioPart {
	parts := make([]scenarioPart, cmd.config.Parts)
	for i := range parts {
		qty := 1 + cmd.rand.Intn(10)
		if cmd.rand.Float64() < 0.2 {
			qty *= 10
		}
		cents := 5 + cmd.rand.Intn(50000)
		parts[i] = scenarioPart{
			PartNumber: fmt.Sprintf("PN-%05d", i+1),
			Required:   qty,
			ListPrice:  decimal.New(int64(cents), -2),
		}
	}
	return parts
}

// generateQuotes spreads stock for each part across the suppliers that quote it.
// About one part in twenty gets no quote at all.
func (cmd *GenerateCommand) generateQuotes(parts []scenarioPart) [][]scenarioQuote {
	quotes := make([][]scenarioQuote, cmd.config.Suppliers)
	for _, part := range parts {
		if cmd.rand.Float64() < 0.05 {
			continue
		}

		var quoting []int
		for s := 0; s < cmd.config.Suppliers; s++ {
			if cmd.rand.Float64() < cmd.config.QuoteRate {
				quoting = append(quoting, s)
			}
		}
		if len(quoting) == 0 {
			quoting = append(quoting, cmd.rand.Intn(cmd.config.Suppliers))
		}

		target := int(float64(part.Required)*cmd.config.Coverage + 0.5)
		share := max(1, target/len(quoting))
		for _, s := range quoting {
			available := max(1, share/2+cmd.rand.Intn(share+1))
			quotes[s] = append(quotes[s], scenarioQuote{
				PartNumber: part.PartNumber,
				UnitPrice:  cmd.quotePrice(part.ListPrice),
				Available:  available,
			})
		}
	}
	return quotes
}

// quotePrice varies the list price by up to 25% either way
func (cmd *GenerateCommand) quotePrice(list decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromFloat(0.75 + cmd.rand.Float64()*0.5)
	price := list.Mul(factor).Round(2)
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.New(1, -2)
	}
	return price
}

// writeOrder creates the order.csv file
func (cmd *GenerateCommand) writeOrder(parts []scenarioPart) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, "order.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "part_number,qty_required")
	for _, part := range parts {
		fmt.Fprintf(file, "%s,%d\n", part.PartNumber, part.Required)
	}
	return nil
}

// writeQuotes creates one supplier quote file
func (cmd *GenerateCommand) writeQuotes(path string, quotes []scenarioQuote) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "part_number,unit_price,available_qty")
	for _, q := range quotes {
		fmt.Fprintf(file, "%s,%s,%d\n", q.PartNumber, q.UnitPrice.StringFixed(2), q.Available)
	}
	return nil
}

func supplierName(i int) string {
	return fmt.Sprintf("Supplier_%c", 'A'+rune(i%26)) + suffix(i/26)
}

func suffix(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n+1)
}

// printHelp displays help for the generate command
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprint(cmd.out, `Generate Command - Create a test order and supplier quotes

USAGE:
    quoteopt generate -output <dir> [options]

OPTIONS:
    -output <dir>       Output directory (order.csv and quotes/ are written here)
    -parts <n>          Number of order lines (default 50)
    -suppliers <n>      Number of suppliers (default 4)
    -coverage <x>       Quoted stock as a multiple of demand (default 1.5)
    -quote-rate <p>     Probability a supplier quotes a part (default 0.7)
    -seed <n>           Random seed for reproducible output
    -verbose            Print progress
    -help               Show this help message

EXAMPLES:
    quoteopt generate -output ./scenario -parts 200 -suppliers 6 -seed 42
    quoteopt -orders ./scenario/order.csv -quotes-dir ./scenario/quotes
`)
}
