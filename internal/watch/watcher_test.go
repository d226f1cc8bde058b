package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inzamam1121/Process-Doc/internal/common"
)

type fakeProcessor struct {
	success   bool
	processed int
	calls     []string
}

func (f *fakeProcessor) ProcessFolder(_ context.Context, folder string, files []string) (bool, int) {
	f.calls = append(f.calls, folder)
	if f.success {
		return true, f.processed + len(files)
	}
	return false, 0
}

func newTestWatcher(root string, proc FolderProcessor) *Watcher {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(common.ScanConfig{Root: root, Interval: time.Hour}, proc, logger)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanProcessesUnscannedFolders(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "clinic", "a.docx"))
	touch(t, filepath.Join(root, "clinic", "b.doc"))

	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)
	w.ScanOnce(context.Background())

	require.Equal(t, []string{filepath.Join(root, "clinic")}, proc.calls)

	m, ok := ReadManifest(filepath.Join(root, "clinic"))
	require.True(t, ok)
	assert.Equal(t, 2, m.Items)
	assert.Equal(t, 2, m.ProcessedItems)
}

func TestScanSkipsUpToDateFolders(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "clinic")
	touch(t, filepath.Join(dir, "a.docx"))
	require.NoError(t, WriteManifest(dir, Manifest{Items: 1, ProcessedItems: 1}))

	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)
	w.ScanOnce(context.Background())

	assert.Empty(t, proc.calls)
}

func TestScanReprocessesStaleFolders(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "clinic")
	touch(t, filepath.Join(dir, "a.docx"))
	touch(t, filepath.Join(dir, "b.docx"))
	require.NoError(t, WriteManifest(dir, Manifest{Items: 1, ProcessedItems: 1}))

	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)
	w.ScanOnce(context.Background())

	require.Len(t, proc.calls, 1)
	m, ok := ReadManifest(dir)
	require.True(t, ok)
	assert.Equal(t, 2, m.Items)
}

func TestFailedPassKeepsFolderEligible(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "clinic")
	touch(t, filepath.Join(dir, "a.docx"))

	proc := &fakeProcessor{success: false}
	w := newTestWatcher(root, proc)

	w.ScanOnce(context.Background())
	w.ScanOnce(context.Background())

	// Items never advanced, so both passes handed the folder over.
	assert.Len(t, proc.calls, 2)
	m, ok := ReadManifest(dir)
	require.True(t, ok)
	assert.Zero(t, m.Items)
}

func TestScanSkipsArchiveFolders(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "clinic", "a.docx"))
	touch(t, filepath.Join(root, "clinic", "Processed", "old.docx"))
	touch(t, filepath.Join(root, "clinic", "Unprocessed", "Files", "junk.docx"))

	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)
	w.ScanOnce(context.Background())

	assert.Equal(t, []string{filepath.Join(root, "clinic")}, proc.calls)
}

func TestScanWalksNestedFolders(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "one.docx"))
	touch(t, filepath.Join(root, "a", "b", "two.docx"))

	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)
	w.ScanOnce(context.Background())

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
	}, proc.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	proc := &fakeProcessor{success: true}
	w := newTestWatcher(root, proc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
