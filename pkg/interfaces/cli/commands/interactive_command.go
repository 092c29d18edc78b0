package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/quoteopt/pkg/application/services/allocation"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/quoteopt/pkg/interfaces/cli/output"
)

// InteractiveCommand runs a pin-and-rerun session over one order and quote set
type InteractiveCommand struct {
	config  Config
	ws      *workspace
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// NewInteractiveCommand creates a new interactive command with the given configuration
func NewInteractiveCommand(cfg Config) *InteractiveCommand {
	in := cfg.Stdin
	if in == nil {
		in = os.Stdin
	}
	cmd := &InteractiveCommand{
		config:  cfg,
		scanner: bufio.NewScanner(in),
		out:     cfg.Stdout,
		errOut:  cfg.Stderr,
	}
	if cmd.out == nil {
		cmd.out = os.Stdout
	}
	if cmd.errOut == nil {
		cmd.errOut = os.Stderr
	}
	return cmd
}

// Execute loads the inputs and reads commands until quit or end of input
func (c *InteractiveCommand) Execute(ctx context.Context) (err error) {
	if c.config.Help {
		c.printHelp()
		return nil
	}

	pins, err := parsePins(c.config.Pins)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	c.ws, err = openWorkspace(ctx, c.config, c.out, c.errOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.ws.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := c.ws.applyPinCommands(ctx, c.config, pins); err != nil {
		return err
	}

	if err := c.runInteractiveSession(ctx); err != nil {
		return err
	}

	if err := c.ws.savePins(ctx, c.config.SavePins); err != nil {
		return err
	}
	if c.config.SavePins != "" {
		fmt.Fprintf(c.out, "📌 Pins saved to: %s\n", c.config.SavePins)
	}
	return nil
}

func (c *InteractiveCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Quote Optimization Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "quoteopt> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		quit, err := c.processCommand(ctx, line)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		fmt.Fprintln(c.out)
	}

	return c.scanner.Err()
}

// processCommand handles one input line and reports whether the session should end
func (c *InteractiveCommand) processCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "pin":
		return false, c.handlePin(ctx, args)
	case "clear", "unpin":
		return false, c.handleClear(ctx, args)
	case "reset":
		return false, c.ws.session.ClearAll(ctx)
	case "pins":
		return false, c.handlePins(ctx)
	case "run":
		return false, c.handleRun(ctx, args)
	case "offers", "quotes":
		return false, c.handleOffers(args)
	case "save":
		return false, c.handleSave(ctx, args)
	case "events", "history":
		return false, c.handleShowEvents(args)
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return false, nil
}

func (c *InteractiveCommand) handlePin(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: pin <part-number> <supplier>")
	}
	part := entities.PartNumber(args[0])
	supplier := entities.SupplierID(strings.Join(args[1:], " "))

	if err := c.ws.session.SetPin(ctx, part, supplier); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Pinned %s to %s\n", part, supplier)
	return nil
}

func (c *InteractiveCommand) handleClear(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clear <part-number>")
	}
	part := entities.PartNumber(args[0])
	if err := c.ws.session.ClearPin(ctx, part); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cleared pin for %s\n", part)
	return nil
}

func (c *InteractiveCommand) handlePins(ctx context.Context) error {
	selections, err := c.ws.session.Selections(ctx)
	if err != nil {
		return err
	}
	if len(selections) == 0 {
		fmt.Fprintln(c.out, "No pins set")
		return nil
	}
	fmt.Fprintf(c.out, "=== Pins (%d) ===\n", len(selections))
	for _, part := range selections.Parts() {
		fmt.Fprintf(c.out, "  %s -> %s\n", part, selections[part])
	}
	return nil
}

// handleRun allocates and prints the text report. "run json" prints JSON instead.
func (c *InteractiveCommand) handleRun(ctx context.Context, args []string) error {
	format := "text"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("usage: run [text|json]")
	}

	result, err := c.ws.session.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running allocation: %w", err)
	}
	if err := output.Generate(result, output.Config{
		Format:  format,
		Verbose: c.config.Verbose,
		Writer:  c.out,
	}); err != nil {
		return err
	}
	if format == "text" && c.ws.runNote != "" {
		fmt.Fprintf(c.out, "🔁 %s\n", c.ws.runNote)
	}
	return nil
}

// handleOffers lists the quotes for one part, cheapest first
func (c *InteractiveCommand) handleOffers(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: offers <part-number>")
	}
	part := entities.PartNumber(args[0])

	result, err := c.ws.session.Quotes(part)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		fmt.Fprintf(c.out, "No quotes for %s\n", part)
		return nil
	}

	fmt.Fprintf(c.out, "=== Quotes for %s ===\n", part)
	for _, offer := range allocation.SortByPrice(part, result) {
		fmt.Fprintf(c.out, "  %-20s %10s x %s\n",
			offer.Supplier, offer.UnitPrice.StringFixed(2), offer.AvailableQty.String())
	}
	return nil
}

func (c *InteractiveCommand) handleSave(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <pins-file>")
	}
	selections, err := c.ws.session.Selections(ctx)
	if err != nil {
		return err
	}
	if err := csv.SavePins(args[0], selections); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %d pins to %s\n", len(selections), args[0])
	return nil
}

// handleShowEvents prints the tail of the audit log: pin commands and runs
func (c *InteractiveCommand) handleShowEvents(args []string) error {
	limit := 10
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil && l > 0 {
			limit = l
		}
	}

	log, err := c.ws.session.AuditLog(0)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Recent Events (last %d of %d) ===\n", min(limit, len(log)), len(log))
	for _, event := range log[max(0, len(log)-limit):] {
		fmt.Fprintf(c.out, "#%-4d [%s] %-20s %s\n",
			event.Sequence,
			event.At.Local().Format("15:04:05"),
			event.Type,
			event.Describe())
	}
	return nil
}

func (c *InteractiveCommand) printHelp() {
	fmt.Fprint(c.out, `Interactive Command - Pin suppliers and re-run the allocation

USAGE:
    quoteopt interactive -orders <file> -quotes-dir <dir> [-pins <file>] [-store <kind>]

Accepts the same options as the optimize command. -clear-all, -pins, -clear-pin
and -pin are applied when the session starts, and -save-pins writes the pins in
effect when the session ends.
`)
}

func (c *InteractiveCommand) printInteractiveHelp() {
	fmt.Fprint(c.out, `Available commands:
  pin <part> <supplier>    Pin a part to a supplier
  clear <part>             Return a part to automatic allocation
  reset                    Clear every pin
  pins                     List current pins
  offers <part>            List quotes for a part, cheapest first
  run [text|json]          Allocate and print the result
  save <file>              Write current pins to a CSV file
  events [n]               Show the last n pin and run events (default 10)
  help                     Show this help
  quit                     End the session
`)
}
