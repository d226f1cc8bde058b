package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Inzamam1121/Process-Doc/internal/classify"
	"github.com/Inzamam1121/Process-Doc/internal/common"
	"github.com/Inzamam1121/Process-Doc/internal/extract"
	processor "github.com/Inzamam1121/Process-Doc/internal/pipeline"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
	"github.com/Inzamam1121/Process-Doc/internal/watch"
)

func main() {
	cfg := common.LoadConfig()

	logger, closeLog, err := common.NewLogger(cfg.Log)
	if err != nil {
		// The logger is not up yet; there is nowhere else to report to.
		panic(err)
	}
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := repository.OpenPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	if err := repository.HealthCheck(ctx, db, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, db, logger); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	patients := repository.NewPatientRepository(db, logger)
	proc := processor.NewProcessor(logger, classify.New(logger), extract.New(logger), patients)
	watcher := watch.New(cfg.Scan, proc, logger)

	logger.Info("starting document watcher",
		"root", cfg.Scan.Root,
		"interval", cfg.Scan.Interval,
		"watch_events", cfg.Scan.WatchEvents)

	if err := watcher.Run(ctx); err != nil {
		logger.Error("watcher terminated", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
