package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vsinha/quoteopt/pkg/application/services/session"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/domain/repositories"
	"github.com/vsinha/quoteopt/pkg/domain/services"
	"github.com/vsinha/quoteopt/pkg/infrastructure/config"
	"github.com/vsinha/quoteopt/pkg/infrastructure/events"
	"github.com/vsinha/quoteopt/pkg/infrastructure/logging"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/redis"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/sqlite"
)

// workspace is a loaded order and quote set with an open pin store
type workspace struct {
	settings *config.Config
	logger   *slog.Logger
	session  *session.Session
	reports  map[string]*services.NormalizeReport
	filePins entities.SupplierSelection
	close    func() error

	audit *events.MemoryLog
	// runNote says how the latest run compares with the run before it.
	runNote string
}

// openWorkspace loads inputs and opens the configured store
func openWorkspace(ctx context.Context, cfg Config, out, errOut io.Writer) (*workspace, error) {
	if cfg.OrdersFile == "" {
		return nil, fmt.Errorf("validation error: must specify an order file with -orders")
	}
	if len(cfg.QuoteFiles) == 0 && cfg.QuotesDir == "" {
		return nil, fmt.Errorf("validation error: must specify quote files with -quotes or a directory with -quotes-dir")
	}

	settings, err := loadSettings(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat, errOut)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	quoteFiles, err := resolveQuoteFiles(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input files: %w", err)
	}

	if cfg.Verbose {
		printHeader(out, cfg, quoteFiles, settings)
		fmt.Fprintln(out, "📂 Loading order and quotes...")
	}

	normalizer, err := services.NewRecordNormalizer(settings.ColumnAliases)
	if err != nil {
		return nil, fmt.Errorf("invalid column aliases: %w", err)
	}
	loader := csv.NewLoader(normalizer)

	orders, orderReport, err := loader.LoadOrders(cfg.OrdersFile)
	if err != nil {
		return nil, fmt.Errorf("error loading orders: %w", err)
	}
	offers, quoteReport, err := loader.LoadQuotes(quoteFiles)
	if err != nil {
		return nil, fmt.Errorf("error loading quotes: %w", err)
	}

	ws := &workspace{
		settings: settings,
		logger:   logger,
		reports:  map[string]*services.NormalizeReport{"orders": orderReport, "quotes": quoteReport},
	}

	if cfg.PinsFile != "" {
		pins, pinReport, err := loader.LoadPins(cfg.PinsFile)
		if err != nil {
			return nil, fmt.Errorf("error loading pins: %w", err)
		}
		ws.filePins = pins
		ws.reports["pins"] = pinReport
	}

	logger.Debug("inputs normalized",
		"orders", len(orders), "orders_dropped", orderReport.Dropped(),
		"offers", len(offers), "offers_dropped", quoteReport.Dropped())

	if cfg.Verbose {
		fmt.Fprintf(out, "✅ Data loaded successfully:\n")
		fmt.Fprintf(out, "  Order Lines: %d\n", len(orders))
		fmt.Fprintf(out, "  Quote Offers: %d\n", len(offers))
		fmt.Fprintf(out, "  Quote Files: %d\n", len(quoteFiles))
		fmt.Fprintln(out)
	}

	orderRepo := memory.NewOrderRepository(len(orders))
	if err := orderRepo.LoadOrders(orders); err != nil {
		return nil, fmt.Errorf("failed to load orders into repository: %w", err)
	}
	quoteRepo := memory.NewQuoteRepository()
	if err := quoteRepo.LoadOffers(offers); err != nil {
		return nil, fmt.Errorf("failed to load offers into repository: %w", err)
	}

	selections, runs, closeStore, err := openStore(settings.Store)
	if err != nil {
		return nil, err
	}
	ws.close = closeStore
	ws.audit = events.NewMemoryLog()

	ws.session, err = session.New(session.Config{
		Orders:     orderRepo,
		Quotes:     quoteRepo,
		Selections: selections,
		Runs:       runs,
		Events:     ws.audit,
		Logger:     logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	previous, err := runs.LatestRun(ctx)
	switch {
	case errors.Is(err, repositories.ErrRunNotFound):
		previous = nil
	case err != nil:
		_ = closeStore()
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}
	ws.watchRuns(previous)
	return ws, nil
}

// watchRuns compares each completed run with the one before it, starting from
// the latest run already in the store.
func (w *workspace) watchRuns(latest *entities.AllocationRun) {
	var previous events.AllocationCompleted
	if latest != nil {
		previous = events.AllocationCompleted{RunID: latest.ID, Digest: latest.Digest}
	}

	w.audit.Watch(func(e events.Event) {
		run, ok := e.Data.(events.AllocationCompleted)
		if !ok {
			return
		}
		switch {
		case previous.RunID == "":
			w.runNote = ""
		case previous.Digest == run.Digest:
			w.runNote = fmt.Sprintf("Allocation unchanged since run %s", previous.RunID)
			w.logger.Info("allocation unchanged", "run_id", run.RunID, "previous_run", previous.RunID)
		default:
			w.runNote = fmt.Sprintf("Allocation changed since run %s", previous.RunID)
			w.logger.Info("allocation changed", "run_id", run.RunID, "previous_run", previous.RunID)
		}
		previous = run
	}, events.AllocationCompletedEvent)
}

// applyPinCommands runs pin commands in order: reset, pins file, clears, then explicit pins.
// Stale pins from the file are skipped with a warning; explicit pins must be valid.
func (w *workspace) applyPinCommands(ctx context.Context, cfg Config, pins []pinAssignment) error {
	sess := w.session
	if cfg.ClearAll {
		if err := sess.ClearAll(ctx); err != nil {
			return err
		}
	}

	if err := w.applyFilePins(ctx); err != nil {
		return err
	}

	for _, part := range cfg.ClearPins {
		if err := sess.ClearPin(ctx, entities.PartNumber(strings.TrimSpace(part))); err != nil {
			return err
		}
	}

	for _, pin := range pins {
		if err := sess.SetPin(ctx, pin.part, pin.supplier); err != nil {
			return fmt.Errorf("invalid pin %s=%s: %w", pin.part, pin.supplier, err)
		}
	}
	return nil
}

// savePins writes the pins in effect to filename. An empty name is a no-op.
func (w *workspace) savePins(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	selections, err := w.session.Selections(ctx)
	if err != nil {
		return err
	}
	if err := csv.SavePins(filename, selections); err != nil {
		return fmt.Errorf("error saving pins: %w", err)
	}
	return nil
}

// Close releases the pin store
func (w *workspace) Close() error {
	if w.close == nil {
		return nil
	}
	if err := w.close(); err != nil {
		return fmt.Errorf("failed to close %s store: %w", w.settings.Store.Kind, err)
	}
	return nil
}

// applyFilePins pins everything from the pins file. Pins that no longer match
// the order or quotes are skipped with a warning.
func (w *workspace) applyFilePins(ctx context.Context) error {
	for _, part := range w.filePins.Parts() {
		supplier := w.filePins[part]
		err := w.session.SetPin(ctx, part, supplier)
		if errors.Is(err, session.ErrUnknownPart) || errors.Is(err, session.ErrNoQuote) {
			w.logger.Warn("skipping saved pin", "part", part, "supplier", supplier, "error", err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// openStore returns the selection and run repositories for the configured store kind
func openStore(cfg config.StoreConfig) (repositories.SelectionRepository, repositories.AllocationRunRepository, func() error, error) {
	switch cfg.Kind {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return redis.NewSelectionStore(client, cfg.RedisKey), memory.NewAllocationRunRepository(), client.Close, nil
	default:
		noop := func() error { return nil }
		return memory.NewSelectionRepository(), memory.NewAllocationRunRepository(), noop, nil
	}
}

// loadSettings reads the config file and lets flags override it
func loadSettings(cfg Config) (*config.Config, error) {
	settings, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.Store != "" {
		settings.Store.Kind = cfg.Store
	}
	if cfg.Format != "" {
		settings.Output.Format = cfg.Format
	}
	if cfg.OutputDir != "" {
		settings.Output.Dir = cfg.OutputDir
	}
	if cfg.Verbose {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// resolveQuoteFiles combines explicit quote files with the .csv files of -quotes-dir
func resolveQuoteFiles(cfg Config) ([]string, error) {
	if _, err := os.Stat(cfg.OrdersFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("order file not found: %s", cfg.OrdersFile)
	}

	files := append([]string(nil), cfg.QuoteFiles...)
	if cfg.QuotesDir != "" {
		dirFiles, err := csv.QuoteFilesInDir(cfg.QuotesDir)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}

	for _, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("quote file not found: %s", path)
		}
	}
	return files, nil
}

func printHeader(out io.Writer, cfg Config, quoteFiles []string, settings *config.Config) {
	fmt.Fprintf(out, "🚀 Supplier Quote Optimizer\n")
	fmt.Fprintf(out, "Order file: %s\n", cfg.OrdersFile)
	fmt.Fprintf(out, "Quote files:\n")
	for _, path := range quoteFiles {
		fmt.Fprintf(out, "  %s\n", path)
	}
	fmt.Fprintf(out, "Pin store: %s\n", settings.Store.Kind)
	fmt.Fprintf(out, "Output format: %s\n", settings.Output.Format)
	if settings.Output.Dir != "" {
		fmt.Fprintf(out, "Output directory: %s\n", settings.Output.Dir)
	}
	fmt.Fprintln(out)
}

func parsePins(raw []string) ([]pinAssignment, error) {
	pins := make([]pinAssignment, 0, len(raw))
	for _, r := range raw {
		pin, err := parsePin(r)
		if err != nil {
			return nil, err
		}
		pins = append(pins, pin)
	}
	return pins, nil
}
