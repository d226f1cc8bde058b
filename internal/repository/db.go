package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Inzamam1121/Process-Doc/internal/common"
)

// patientDataDDL is portable across Postgres and SQLite. The table has no
// surrogate key; (old_document, is_deleted) is how replacement batches find
// the rows they supersede.
const patientDataDDL = `
CREATE TABLE IF NOT EXISTS patient_data (
	patient_first_name TEXT,
	patient_last_name  TEXT,
	dob                TIMESTAMP,
	request_date       TIMESTAMP,
	old_document       TEXT,
	new_document       TEXT,
	old_document_path  TEXT,
	new_document_path  TEXT,
	is_deleted         BOOLEAN NOT NULL DEFAULT FALSE
)`

// OpenPostgres creates a pgx pool and wraps it as *sql.DB so the repository
// runs the same statements against either backend.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "process-doc"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return db, pool, nil
}

// OpenSQLite opens a file or in-memory SQLite database. Used by the one-shot
// batch tool and by tests; the statements the repository issues are the same
// as against Postgres.
func OpenSQLite(dsn string, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("opening sqlite database", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	// modernc sqlite serializes writes; one connection avoids lock errors.
	db.SetMaxOpenConns(1)
	return db, nil
}

// EnsureSchema creates the patient_data table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, patientDataDDL); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return common.NewAppError("SCHEMA_ERROR", "failed to ensure patient_data table", err)
	}
	return nil
}

// Close closes the database connections gracefully.
func Close(db *sql.DB, pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database handle", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
