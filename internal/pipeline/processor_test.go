package processor

import (
	"archive/zip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inzamam1121/Process-Doc/internal/classify"
	"github.com/Inzamam1121/Process-Doc/internal/extract"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
)

func newTestProcessor(t *testing.T) (*Processor, repository.PatientRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := repository.OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.EnsureSchema(context.Background(), db, logger))

	repo := repository.NewPatientRepository(db, logger)
	return NewProcessor(logger, classify.New(logger), extract.New(logger), repo), repo
}

func writeDocx(t *testing.T, dir, name string, paragraphs ...string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	var sb strings.Builder
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)

	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeFile(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
}

func TestProcessFolderEndToEnd(t *testing.T) {
	p, repo := newTestProcessor(t)
	folder := t.TempDir()

	writeDocx(t, folder, "referral.docx",
		"PATIENT: John Q Public", "DOB: 3/4/85", "Admit Date: 12/25/2020")
	writeFile(t, folder, "note.doc", []byte("Name: Mary Smith\nDOB: 1/2/60\n"))
	writeFile(t, folder, "broken.doc", []byte{0x00, 0x01, 0x02, 0x03})

	ok, processed := p.ProcessFolder(context.Background(),
		folder, []string{"referral.docx", "note.doc", "broken.doc"})

	assert.True(t, ok)
	assert.Equal(t, 2, processed)

	assert.FileExists(t, filepath.Join(folder, "Processed", "john_q_public_19850304_20201225.docx"))
	assert.FileExists(t, filepath.Join(folder, "Processed", "mary_smith_19600102.doc"))
	assert.FileExists(t, filepath.Join(folder, "Unprocessed", "Links", "broken.doc"))

	got, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestProcessFolderEmptyBatchFails(t *testing.T) {
	p, _ := newTestProcessor(t)
	folder := t.TempDir()
	writeFile(t, folder, "broken.doc", []byte{0x00, 0x01})

	ok, processed := p.ProcessFolder(context.Background(), folder, []string{"broken.doc"})

	assert.False(t, ok)
	assert.Zero(t, processed)
	assert.FileExists(t, filepath.Join(folder, "Unprocessed", "Links", "broken.doc"))
}

func TestProcessFolderCumulativeCount(t *testing.T) {
	p, repo := newTestProcessor(t)
	folder := t.TempDir()

	writeFile(t, folder, "first.doc", []byte("Name: Mary Smith\nDOB: 1/2/60\n"))
	ok, processed := p.ProcessFolder(context.Background(), folder, []string{"first.doc"})
	require.True(t, ok)
	assert.Equal(t, 1, processed)

	// A later pass counts everything accumulated in Processed, not just its
	// own batch.
	writeFile(t, folder, "second.doc", []byte("Name: Jane Doe\nDOB: 4/5/70\n"))
	ok, processed = p.ProcessFolder(context.Background(), folder, []string{"second.doc"})
	require.True(t, ok)
	assert.Equal(t, 2, processed)

	got, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProcessFolderReprocessIsIdempotent(t *testing.T) {
	p, repo := newTestProcessor(t)
	folder := t.TempDir()
	writeFile(t, folder, "note.doc", []byte("Name: Mary Smith\nDOB: 1/2/60\n"))

	for i := 0; i < 2; i++ {
		ok, _ := p.ProcessFolder(context.Background(), folder, []string{"note.doc"})
		require.True(t, ok)
	}

	got, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	// One live row per source document, plus a collision-suffixed archive copy.
	require.Len(t, got, 1)
	assert.FileExists(t, filepath.Join(folder, "Processed", "mary_smith_19600102.doc"))
	assert.FileExists(t, filepath.Join(folder, "Processed", "mary_smith_19600102_1.doc"))
}

func TestProcessFolderCancelled(t *testing.T) {
	p, _ := newTestProcessor(t)
	folder := t.TempDir()
	writeFile(t, folder, "note.doc", []byte("Name: Mary Smith\nDOB: 1/2/60\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, processed := p.ProcessFolder(ctx, folder, []string{"note.doc"})
	assert.False(t, ok)
	assert.Zero(t, processed)
}
