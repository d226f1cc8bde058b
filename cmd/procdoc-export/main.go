package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Inzamam1121/Process-Doc/internal/common"
	"github.com/Inzamam1121/Process-Doc/internal/export"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out    = flag.String("out", "patients.xlsx", "output XLSX file path")
		sqlite = flag.String("sqlite", "", "path to a SQLite database file (overrides DB_URL)")
	)
	flag.Parse()

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
	case *sqlite != "":
		db, err = repository.OpenSQLite(*sqlite, logger)
	case cfg.Database.DSN != "":
		db, pool, err = repository.OpenPostgres(ctx, cfg.Database, logger)
	default:
		printError("Error: set DB_URL or pass --sqlite\n")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	svc := export.NewService(repository.NewPatientRepository(db, logger), logger)
	data, err := svc.ExportPatientsXLSX(ctx)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", *out, "bytes", len(data))
}
