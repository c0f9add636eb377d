package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/sheet"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "CSV file to import (required)")
	format := flag.String("format", "alpha", "input format: alpha or sheet")
	cycle := flag.Int("cycle", 0, "cycle to import an alpha export into (default: current cycle)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" || (*format != "alpha" && *format != "sheet") {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file export.csv [-format alpha|sheet] [-cycle N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	opts, err := tracker.OptionsFromConfig(cfg.Analysis)
	if err != nil {
		log.Error("invalid analysis config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Store, log, nil)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *dryRun {
		log.Info("DRY RUN mode: changes are applied to an in-memory copy only")
		store, err = memoryCopy(ctx, store)
		if err != nil {
			log.Error("failed to copy store", "error", err)
			os.Exit(1)
		}
	}

	tr := tracker.New(store, opts, log, nil)
	if err := tr.Load(ctx); err != nil {
		log.Error("failed to load workout log", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	switch *format {
	case "alpha":
		if *cycle == 0 {
			*cycle = tr.History().CurrentCycle()
		}
		result, err := alpha.NewProvider(tr, log).Ingest(ctx, f, *cycle)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		result.DryRun = *dryRun
		printResult(log, *cycle, result)
	case "sheet":
		rows, err := sheet.ReadCSV(f)
		if err != nil {
			log.Error("failed to read sheet", "error", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			log.Error("sheet has no rows, refusing to replace the history")
			os.Exit(1)
		}
		if err := tr.ReplaceHistory(ctx, rows); err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		log.Info("history replaced", "rows", len(rows), "dry_run", *dryRun)
	}
	log.Info("import complete")
}

// memoryCopy snapshots store into a memory store so a dry run can go through
// the same code path without writing.
func memoryCopy(ctx context.Context, store storage.Store) (storage.Store, error) {
	rows, err := store.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	p, err := store.LoadProgram(ctx)
	if err != nil && !errors.Is(err, program.ErrMalformed) {
		return nil, err
	}
	return storage.NewMemory(rows, p), nil
}

func printResult(log *slog.Logger, cycle int, r *ingest.Result) {
	log.Info("import stats",
		"cycle", cycle,
		"sessions", r.SessionsReceived,
		"sets", r.SetsReceived,
		"warmups_ignored", r.WarmupsIgnored,
		"batches_applied", r.BatchesApplied,
		"batches_skipped", r.BatchesSkipped,
		"dry_run", r.DryRun,
	)
	if r.Message != "" {
		log.Info(r.Message)
	}
	if len(r.UnknownSessions) > 0 {
		log.Warn("sessions not in the program", "sessions", r.UnknownSessions)
	}
}
