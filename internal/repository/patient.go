package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Inzamam1121/Process-Doc/internal/entity"
)

const dateLayout = "20060102"

// epochSentinel stands in for a missing request date so replacement batches
// compare equal across runs.
var epochSentinel = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

type PatientRepository interface {
	// ReplaceBatch deletes every row claimed by the batch's source documents,
	// then inserts the batch. Returns the number of rows inserted.
	ReplaceBatch(ctx context.Context, records []*entity.PatientRecord) (int, error)
	ListRecords(ctx context.Context) ([]*entity.PatientRecord, error)
}

type patientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPatientRepository(db *sql.DB, logger *slog.Logger) PatientRepository {
	return &patientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *patientRepository) ReplaceBatch(ctx context.Context, records []*entity.PatientRecord) (int, error) {
	records = dedupe(records)
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.deleteBySource(ctx, records); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin insert transaction", "error", err)
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for i, rec := range records {
		dob, err := time.Parse(dateLayout, rec.DOB)
		if err != nil {
			r.logger.Warn("skipping row with unparseable dob",
				"old_document", rec.OldDocument, "dob", rec.DOB, "error", err)
			continue
		}
		reqDate := epochSentinel
		if rec.RequestDate != "" {
			reqDate, err = time.Parse(dateLayout, rec.RequestDate)
			if err != nil {
				r.logger.Warn("skipping row with unparseable request date",
					"old_document", rec.OldDocument, "request_date", rec.RequestDate, "error", err)
				continue
			}
		}

		// Each row gets its own savepoint. On Postgres a failed statement
		// aborts the whole transaction; rolling back to the savepoint keeps
		// the remaining rows insertable. SQLite accepts the same statements.
		sp := fmt.Sprintf("row_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			r.logger.Error("failed to create savepoint", "error", err)
			return 0, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO patient_data (
				patient_first_name, patient_last_name, dob, request_date,
				old_document, new_document, old_document_path, new_document_path, is_deleted
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.PatientFirstName, rec.PatientLastName, dob, reqDate,
			rec.OldDocument, rec.NewDocument, rec.OldDocumentPath, rec.NewDocumentPath, false,
		)
		if err != nil {
			r.logger.Error("failed to insert row, skipping",
				"old_document", rec.OldDocument, "error", err)
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
				r.logger.Error("failed to roll back to savepoint", "error", rbErr)
				return 0, rbErr
			}
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			r.logger.Error("failed to release savepoint", "error", err)
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit insert transaction", "error", err)
		return 0, err
	}
	r.logger.Info("batch persisted", "rows", inserted, "batch_size", len(records))
	return inserted, nil
}

// deleteBySource removes prior rows for the batch's source documents and
// commits before any insert, so reprocessing a folder never duplicates rows.
func (r *patientRepository) deleteBySource(ctx context.Context, records []*entity.PatientRecord) error {
	seen := make(map[string]struct{}, len(records))
	args := make([]any, 0, len(records))
	placeholders := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.OldDocument]; ok {
			continue
		}
		seen[rec.OldDocument] = struct{}{}
		args = append(args, rec.OldDocument)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf("DELETE FROM patient_data WHERE old_document IN (%s)",
		strings.Join(placeholders, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete superseded rows", "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		r.logger.Info("deleted superseded rows", "rows", n)
	}
	return nil
}

func (r *patientRepository) ListRecords(ctx context.Context) ([]*entity.PatientRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT patient_first_name, patient_last_name, dob, request_date,
		       old_document, new_document, old_document_path, new_document_path, is_deleted
		FROM patient_data
		WHERE NOT is_deleted
		ORDER BY patient_last_name, patient_first_name, dob`)
	if err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []*entity.PatientRecord
	for rows.Next() {
		var rec entity.PatientRecord
		var dob, reqDate sql.NullTime
		if err := rows.Scan(
			&rec.PatientFirstName, &rec.PatientLastName, &dob, &reqDate,
			&rec.OldDocument, &rec.NewDocument, &rec.OldDocumentPath, &rec.NewDocumentPath,
			&rec.IsDeleted,
		); err != nil {
			return nil, err
		}
		if dob.Valid {
			rec.DOB = dob.Time.Format(dateLayout)
		}
		if reqDate.Valid && !reqDate.Time.Equal(epochSentinel) {
			rec.RequestDate = reqDate.Time.Format(dateLayout)
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

func dedupe(records []*entity.PatientRecord) []*entity.PatientRecord {
	seen := make(map[entity.PatientRecord]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if _, ok := seen[*rec]; ok {
			continue
		}
		seen[*rec] = struct{}{}
		out = append(out, rec)
	}
	return out
}
