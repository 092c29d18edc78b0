package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/vsinha/quoteopt/pkg/interfaces/cli/commands"
)

// stringList is a repeatable string flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, err := parseCommand(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommand picks the subcommand from the first argument. Without one the
// optimize command runs.
func parseCommand(args []string) (command, error) {
	if len(args) > 0 {
		switch args[0] {
		case "generate":
			return parseGenerate(args[1:])
		case "interactive":
			cfg, err := parseOptimizeFlags("interactive", args[1:])
			if err != nil {
				return nil, err
			}
			return commands.NewInteractiveCommand(cfg), nil
		case "optimize":
			args = args[1:]
		}
	}

	cfg, err := parseOptimizeFlags("optimize", args)
	if err != nil {
		return nil, err
	}
	return commands.NewOptimizeCommand(cfg), nil
}

func parseOptimizeFlags(name string, args []string) (commands.Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var quoteFiles, pins, clearPins stringList
	var (
		ordersFile = fs.String("orders", "", "Path to order CSV file")
		quotesDir  = fs.String("quotes-dir", "", "Directory of supplier quote CSV files")
		pinsFile   = fs.String("pins", "", "Saved pins CSV applied before the run")
		savePins   = fs.String("save-pins", "", "Write the pins in effect after the run")
		clearAll   = fs.Bool("clear-all", false, "Clear every pin before applying others")
		store      = fs.String("store", "", "Pin store: memory, sqlite, redis")
		configFile = fs.String("config", "", "Path to YAML config file")
		outputDir  = fs.String("output", "", "Output directory for report sheets (optional)")
		format     = fs.String("format", "", "Output format: text, json, csv")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	fs.Var(&quoteFiles, "quotes", "Supplier quote CSV file (repeatable)")
	fs.Var(&pins, "pin", "Pin PART=SUPPLIER (repeatable)")
	fs.Var(&clearPins, "clear-pin", "Clear the pin for PART (repeatable)")

	if err := fs.Parse(args); err != nil {
		return commands.Config{}, err
	}

	return commands.Config{
		OrdersFile: *ordersFile,
		QuoteFiles: quoteFiles,
		QuotesDir:  *quotesDir,
		PinsFile:   *pinsFile,
		SavePins:   *savePins,
		Pins:       pins,
		ClearPins:  clearPins,
		ClearAll:   *clearAll,
		Store:      *store,
		ConfigFile: *configFile,
		OutputDir:  *outputDir,
		Format:     *format,
		Verbose:    *verbose,
		Help:       *help,
	}, nil
}

func parseGenerate(args []string) (command, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		parts     = fs.Int("parts", 50, "Number of order lines")
		suppliers = fs.Int("suppliers", 4, "Number of suppliers")
		coverage  = fs.Float64("coverage", 1.5, "Quoted stock as a multiple of demand")
		quoteRate = fs.Float64("quote-rate", 0.7, "Probability a supplier quotes a part")
		outputDir = fs.String("output", "", "Output directory")
		seed      = fs.Int64("seed", 0, "Random seed (0 = time based)")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return commands.NewGenerateCommand(commands.GenerateConfig{
		Parts:     *parts,
		Suppliers: *suppliers,
		Coverage:  *coverage,
		QuoteRate: *quoteRate,
		OutputDir: *outputDir,
		Seed:      *seed,
		Help:      *help,
		Verbose:   *verbose,
	}), nil
}
