package repository

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inzamam1121/Process-Doc/internal/entity"
)

func newTestRepo(t *testing.T) PatientRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db, logger))
	return NewPatientRepository(db, logger)
}

func record(oldDoc, first, last, dob, reqDate string) *entity.PatientRecord {
	return &entity.PatientRecord{
		PatientFirstName: first,
		PatientLastName:  last,
		DOB:              dob,
		RequestDate:      reqDate,
		OldDocument:      oldDoc,
		NewDocument:      "new_" + oldDoc,
		OldDocumentPath:  "/in/" + oldDoc,
		NewDocumentPath:  "/out/new_" + oldDoc,
	}
}

func TestReplaceBatchIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	batch := []*entity.PatientRecord{record("a.docx", "John Q", "Public", "19850304", "20110102")}

	for i := 0; i < 3; i++ {
		n, err := repo.ReplaceBatch(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John Q", got[0].PatientFirstName)
	assert.Equal(t, "19850304", got[0].DOB)
	assert.Equal(t, "20110102", got[0].RequestDate)
}

func TestReplaceBatchSkipsBadRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John Q", "Public", "19850304", "20110102"),
		record("b.docx", "Mary", "Smith", "not-a-date", ""),
		record("c.docx", "Jane", "Doe", "19600102", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReplaceBatchIsolatesRowLevelDatabaseErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Same shape as the real table plus a constraint one row will trip, so
	// the failure happens inside the insert statement rather than during
	// date parsing.
	_, err = db.Exec(`
		CREATE TABLE patient_data (
			patient_first_name TEXT,
			patient_last_name  TEXT,
			dob                TIMESTAMP,
			request_date       TIMESTAMP,
			old_document       TEXT CHECK (old_document <> 'poison.docx'),
			new_document       TEXT,
			old_document_path  TEXT,
			new_document_path  TEXT,
			is_deleted         BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	require.NoError(t, err)

	repo := NewPatientRepository(db, logger)
	ctx := context.Background()

	n, err := repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John Q", "Public", "19850304", "20110102"),
		record("poison.docx", "Mary", "Smith", "19600102", ""),
		record("c.docx", "Jane", "Doe", "19700405", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.NotEqual(t, "poison.docx", rec.OldDocument)
	}
}

func TestReplaceBatchDeduplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John Q", "Public", "19850304", "20110102"),
		record("a.docx", "John Q", "Public", "19850304", "20110102"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReplaceBatchOnlySupersedesOwnDocuments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John Q", "Public", "19850304", ""),
		record("b.docx", "Mary", "Smith", "19600102", ""),
	})
	require.NoError(t, err)

	// Reprocessing a.docx must not disturb b.docx's row.
	_, err = repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John", "Public", "19850304", ""),
	})
	require.NoError(t, err)

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byDoc := map[string]string{}
	for _, rec := range got {
		byDoc[rec.OldDocument] = rec.PatientFirstName
	}
	assert.Equal(t, "John", byDoc["a.docx"])
	assert.Equal(t, "Mary", byDoc["b.docx"])
}

func TestMissingRequestDateRoundTripsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ReplaceBatch(ctx, []*entity.PatientRecord{
		record("a.docx", "John Q", "Public", "19850304", ""),
	})
	require.NoError(t, err)

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].RequestDate)
}

func TestReplaceBatchEmptyIsNoOp(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.ReplaceBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
