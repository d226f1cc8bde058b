package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Inzamam1121/Process-Doc/internal/classify"
	"github.com/Inzamam1121/Process-Doc/internal/common"
	"github.com/Inzamam1121/Process-Doc/internal/extract"
	processor "github.com/Inzamam1121/Process-Doc/internal/pipeline"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
	"github.com/Inzamam1121/Process-Doc/internal/watch"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir    = flag.String("dir", "", "directory to process documents from (required)")
		sqlite = flag.String("sqlite", "", "path to a SQLite database file (overrides DB_URL)")
		inmem  = flag.Bool("inmem", false, "use an in-memory SQLite database (dry run)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	var (
		db   *sql.DB
		pool *pgxpool.Pool
		err  error
	)
	switch {
	case *inmem:
		db, err = repository.OpenSQLite(":memory:", logger)
	case *sqlite != "":
		db, err = repository.OpenSQLite(*sqlite, logger)
	case cfg.Database.DSN != "":
		db, pool, err = repository.OpenPostgres(ctx, cfg.Database, logger)
	default:
		printError("Error: set DB_URL or pass --sqlite/--inmem\n")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	if err := repository.EnsureSchema(ctx, db, logger); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	files, err := watch.CandidateFiles(*dir)
	if err != nil {
		logger.Error("failed to list directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Info("no candidate documents found", "dir", *dir)
		return
	}

	patients := repository.NewPatientRepository(db, logger)
	proc := processor.NewProcessor(logger, classify.New(logger), extract.New(logger), patients)

	ok, processed := proc.ProcessFolder(ctx, *dir, files)
	logger.Info("batch finished", "dir", *dir, "files", len(files),
		"processed", processed, "success", ok)
	if !ok {
		os.Exit(1)
	}
}
