package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/f1optimiser/config"
	"github.com/alejandrodnm/f1optimiser/internal/adapters/catalog"
	"github.com/alejandrodnm/f1optimiser/internal/adapters/notify"
	"github.com/alejandrodnm/f1optimiser/internal/adapters/solver"
	"github.com/alejandrodnm/f1optimiser/internal/adapters/storage"
	"github.com/alejandrodnm/f1optimiser/internal/application/optimizer"
	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/alejandrodnm/f1optimiser/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	chipFlag := flag.String("chip", "", "chip to play: wildcard|limitless|extra-drs|autopilot|no-negative|final-fix")
	costCap := flag.Float64("cost-cap", 0, "cost cap for the team (0 = previous team value + remaining budget)")
	catalogPath := flag.String("catalog", "", "projections file .json|.yaml|.csv (overrides config)")
	save := flag.String("save", "ask", "persist the recommended team: ask|yes|no")
	compare := flag.Bool("compare", false, "solve every available scenario and print a comparison")
	history := flag.Int("history", 0, "print the last N solves and exit")
	reset := flag.Bool("reset", false, "clear the saved season state and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the full team table")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
		cfg.Catalog.URL = ""
	}
	setupLogger(cfg.Log)

	chip, err := domain.ParseChip(*chipFlag)
	if err != nil {
		slog.Error("invalid chip", "err", err)
		os.Exit(2)
	}
	if *save != "ask" && *save != "yes" && *save != "no" {
		slog.Error("invalid -save value", "value", *save)
		os.Exit(2)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	console := notify.NewConsole(*table)

	switch {
	case *reset:
		if err := store.Reset(ctx); err != nil {
			slog.Error("reset failed", "err", err)
			os.Exit(1)
		}
		slog.Info("season state cleared")
		return
	case *history > 0:
		records, err := store.History(ctx, *history)
		if err != nil {
			slog.Error("failed to read history", "err", err)
			os.Exit(1)
		}
		console.PrintHistory(records)
		return
	}

	slog.Info("f1optimiser starting",
		"config", *configPath,
		"catalog", catalogSource(cfg),
		"chip", chip.String(),
		"cost_cap", *costCap,
		"compare", *compare,
	)

	opt := optimizer.New(
		optimizerConfig(cfg),
		newCatalogProvider(cfg),
		store,
		solver.NewBranchAndBound(solver.Config{
			Timeout:        cfg.SolverTimeout(),
			IntegralityTol: cfg.Solver.IntegralityTol,
			MaxNodes:       cfg.Solver.MaxNodes,
		}),
	)

	if *compare {
		if err := runCompare(ctx, opt, console, *costCap); err != nil {
			slog.Error("comparison failed", "err", err)
			os.Exit(1)
		}
		return
	}

	res, err := opt.Optimize(ctx, domain.ScenarioRequest{Chip: chip, CostCap: *costCap})
	if err != nil {
		reportSolveError(err)
		os.Exit(1)
	}
	if err := console.Report(ctx, res); err != nil {
		slog.Warn("reporter error", "err", err)
	}

	if err := finish(ctx, opt, res, *save, os.Stdin, os.Stdout); err != nil {
		slog.Error("failed to save season state", "err", err)
		os.Exit(1)
	}
}

// loadConfig usa el archivo si existe; si no, solo env y defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func optimizerConfig(cfg *config.Config) optimizer.Config {
	oc := optimizer.DefaultConfig()
	oc.Formulation.BigM = cfg.Solver.BigM
	oc.Formulation.PenaltyWeight = cfg.Solver.PenaltyWeight
	oc.Formulation.PriceChangeWeight = cfg.Solver.PriceChangeWeight
	oc.Formulation.Tolerance = cfg.Solver.IntegralityTol
	oc.DefaultBudget = cfg.Season.DefaultBudget
	oc.Workers = cfg.Solver.Workers
	return oc
}

func newCatalogProvider(cfg *config.Config) ports.CatalogProvider {
	if cfg.Catalog.URL != "" {
		return catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.RequestsPerSecond)
	}
	return catalog.NewFileProvider(cfg.Catalog.Path)
}

func catalogSource(cfg *config.Config) string {
	if cfg.Catalog.URL != "" {
		return cfg.Catalog.URL
	}
	return cfg.Catalog.Path
}

// reportSolveError imprime un error de solve con el escenario que lo causó.
func reportSolveError(err error) {
	var se *domain.ScenarioError
	if errors.As(err, &se) {
		slog.Error("solve failed",
			"scenario", se.Kind.String(),
			"chip", se.Chip.String(),
			"detail", se.Detail,
			"err", se.Err,
		)
		return
	}
	slog.Error("solve failed", "err", err)
}

func runCompare(ctx context.Context, opt *optimizer.Optimizer, console *notify.Console, costCap float64) error {
	reqs := []domain.ScenarioRequest{{Chip: domain.ChipNone, CostCap: costCap}}
	for _, c := range domain.Chips {
		reqs = append(reqs, domain.ScenarioRequest{Chip: c, CostCap: costCap})
	}

	cmps, err := opt.Compare(ctx, reqs)
	if err != nil {
		return err
	}

	rows := make([]notify.ComparisonRow, len(cmps))
	for i, c := range cmps {
		rows[i] = notify.ComparisonRow{Chip: c.Request.Chip, Result: c.Result, Err: c.Err}
	}
	console.PrintComparison(rows)

	if best, ok := optimizer.Best(cmps); ok {
		fmt.Printf("Best scenario: %s (%.2f xPts)\n\n", best.Result.Params.Kind, best.Result.TotalExpectedPoints)
	}
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Los logs van a stderr: stdout es el reporte.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
