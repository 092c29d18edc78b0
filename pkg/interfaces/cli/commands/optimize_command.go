package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/interfaces/cli/output"
)

// Config holds configuration for the optimize command. Empty fields fall back
// to the config file, then to defaults.
type Config struct {
	OrdersFile string
	QuoteFiles []string
	QuotesDir  string
	PinsFile   string
	SavePins   string
	Pins       []string
	ClearPins  []string
	ClearAll   bool
	Store      string
	ConfigFile string
	OutputDir  string
	Format     string
	Verbose    bool
	Help       bool

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OptimizeCommand loads an order and supplier quotes, applies pins and
// writes the consolidated allocation
type OptimizeCommand struct {
	config Config
	out    io.Writer
	errOut io.Writer
}

// NewOptimizeCommand creates a new optimize command with the given configuration
func NewOptimizeCommand(cfg Config) *OptimizeCommand {
	cmd := &OptimizeCommand{config: cfg, out: cfg.Stdout, errOut: cfg.Stderr}
	if cmd.out == nil {
		cmd.out = os.Stdout
	}
	if cmd.errOut == nil {
		cmd.errOut = os.Stderr
	}
	return cmd
}

type pinAssignment struct {
	part     entities.PartNumber
	supplier entities.SupplierID
}

// Execute runs the optimize command
func (c *OptimizeCommand) Execute(ctx context.Context) (err error) {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	pins, err := parsePins(c.config.Pins)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	ws, err := openWorkspace(ctx, c.config, c.out, c.errOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := ws.applyPinCommands(ctx, c.config, pins); err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🔄 Running allocation...")
	}

	startTime := time.Now()
	result, err := ws.session.Run(ctx)
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running allocation: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Allocation completed in %v\n", runTime)
		if ws.runNote != "" {
			fmt.Fprintf(c.out, "🔁 %s\n", ws.runNote)
		}
		fmt.Fprintln(c.out)
	}

	err = output.Generate(result, output.Config{
		Format:    ws.settings.Output.Format,
		OutputDir: ws.settings.Output.Dir,
		Verbose:   c.config.Verbose,
		RunTime:   runTime,
		Reports:   ws.reports,
		Writer:    c.out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.SavePins != "" {
		if err := ws.savePins(ctx, c.config.SavePins); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "📌 Pins saved to: %s\n", c.config.SavePins)
		}
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Quote optimization complete!")
	}
	return nil
}

func parsePin(raw string) (pinAssignment, error) {
	part, supplier, ok := strings.Cut(raw, "=")
	part = strings.TrimSpace(part)
	supplier = strings.TrimSpace(supplier)
	if !ok || part == "" || supplier == "" {
		return pinAssignment{}, fmt.Errorf("invalid -pin %q (expected PART=SUPPLIER)", raw)
	}
	return pinAssignment{part: entities.PartNumber(part), supplier: entities.SupplierID(supplier)}, nil
}

// showHelp displays the help message
func (c *OptimizeCommand) showHelp() {
	fmt.Fprintf(c.out, `Supplier Quote Optimizer - cheapest-first allocation of an order across supplier quotes

USAGE:
    quoteopt -orders <file> -quotes <file> [-quotes <file> ...]
    quoteopt -orders <file> -quotes-dir <directory>

OPTIONS:
    -orders <file>          Order CSV (part number, quantity required)
    -quotes <file>          Supplier quote CSV; the supplier is the file name. Repeatable
    -quotes-dir <dir>       Directory of supplier quote CSVs
    -pins <file>            Saved pins CSV (part_number,supplier) applied before the run
    -save-pins <file>       Write the pins in effect after the run
    -pin <PART=SUPPLIER>    Pin a part to a supplier. Repeatable
    -clear-pin <PART>       Return a part to automatic allocation. Repeatable
    -clear-all              Remove every stored pin before applying new ones
    -store <kind>           Pin store: memory, sqlite, redis (default: memory)
    -config <file>          YAML config file
    -output <dir>           Output directory for report files (optional)
    -format <fmt>           Output format: text, json, csv (default: text)
    -verbose                Enable verbose output
    -help                   Show this help message

CSV FILE FORMATS:

order.csv:
    Part Number,Qty Required
    BOLT_M12,10

SupplierA.csv:
    Part Number,Unit Price,Available Qty
    BOLT_M12,0.42,500

Header spellings are matched case-insensitively (e.g. "part", "qty", "price", "stock").

SUBCOMMANDS:
    quoteopt interactive ...   Pin suppliers and re-run in a session
    quoteopt generate ...      Write a test order and quotes

ALLOCATION:
    Each part is filled from the cheapest quotes first. A pinned supplier gets the part
    first; anything it cannot cover is filled cheapest-first from the others. Uncovered
    quantity is reported as a shortage, unquoted parts as NOT AVAILABLE.

EXAMPLES:
    # Optimize against a folder of quotes
    quoteopt -orders order.csv -quotes-dir quotes/ -verbose

    # Pin a part and keep pins between runs
    quoteopt -orders order.csv -quotes-dir quotes/ -store sqlite -pin BOLT_M12=SupplierA

    # Write every report sheet as CSV
    quoteopt -orders order.csv -quotes-dir quotes/ -format csv -output results/
`)
}
