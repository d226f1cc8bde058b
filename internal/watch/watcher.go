package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/Inzamam1121/Process-Doc/constants"
	"github.com/Inzamam1121/Process-Doc/internal/common"
)

// FolderProcessor handles one folder's candidate files, reporting success and
// the cumulative archived count.
type FolderProcessor interface {
	ProcessFolder(ctx context.Context, folder string, files []string) (bool, int)
}

// Watcher repeatedly scans the configured root for folders whose candidate
// count outgrew their manifest, and hands those folders to the processor.
type Watcher struct {
	cfg    common.ScanConfig
	proc   FolderProcessor
	logger *slog.Logger
}

func New(cfg common.ScanConfig, proc FolderProcessor, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, proc: proc, logger: logger}
}

// Run scans on the configured interval until ctx is cancelled. With
// WatchEvents enabled, filesystem events trigger an early rescan instead of
// waiting out the interval.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.Root); err != nil {
		w.logger.Error("scan root is not accessible", "root", w.cfg.Root, "error", err)
		return common.NewAppError("WATCH_ERROR", "scan root is not accessible", err)
	}

	var trigger <-chan struct{}
	if w.cfg.WatchEvents {
		ch, err := w.startEventTrigger(ctx)
		if err != nil {
			w.logger.Warn("event watching unavailable, falling back to interval only", "error", err)
		} else {
			trigger = ch
		}
	}

	for {
		passID := uuid.New()
		w.logger.Info("scan pass starting", "pass_id", passID, "root", w.cfg.Root)
		w.ScanOnce(ctx)
		w.logger.Debug("scan pass finished", "pass_id", passID)

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping", "reason", ctx.Err())
			return nil
		case <-time.After(w.cfg.Interval):
		case <-trigger:
			w.logger.Debug("rescan triggered by filesystem event")
		}
	}
}

// ScanOnce walks the whole tree once, depth first, skipping archive folders.
func (w *Watcher) ScanOnce(ctx context.Context) {
	w.scanDir(ctx, w.cfg.Root)
}

func (w *Watcher) scanDir(ctx context.Context, dir string) {
	if ctx.Err() != nil {
		return
	}

	files, err := CandidateFiles(dir)
	if err != nil {
		w.logger.Error("failed to list folder", "dir", dir, "error", err)
		return
	}
	if len(files) > 0 {
		w.visitFolder(ctx, dir, files)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, excluded := constants.ExcludedDirs[e.Name()]; excluded {
			continue
		}
		if w.cfg.PausePerDir > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.cfg.PausePerDir):
			}
		}
		w.scanDir(ctx, filepath.Join(dir, e.Name()))
	}
}

// visitFolder processes a folder when its manifest is absent or stale. The
// manifest's item count only advances on a successful pass, so a failed
// folder stays eligible for the next scan.
func (w *Watcher) visitFolder(ctx context.Context, dir string, files []string) {
	m, ok := ReadManifest(dir)
	if ok && m.Items >= len(files) {
		return
	}

	if ok {
		w.logger.Info("new files detected, reprocessing", "dir", dir,
			"known", m.Items, "current", len(files))
	} else {
		w.logger.Info("unscanned folder detected", "dir", dir, "files", len(files))
	}

	success, processed := w.proc.ProcessFolder(ctx, dir, files)
	if success {
		m.Items = len(files)
	}
	m.ProcessedItems = processed

	if err := WriteManifest(dir, m); err != nil {
		w.logger.Error("failed to write manifest", "dir", dir, "error", err)
	}
	w.logger.Info("folder pass finished", "dir", dir,
		"files", len(files), "processed", processed, "success", success)
}

// startEventTrigger watches the tree with fsnotify and coalesces relevant
// events into a single rescan signal.
func (w *Watcher) startEventTrigger(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() {
				return nil
			}
			if _, excluded := constants.ExcludedDirs[d.Name()]; excluded {
				return filepath.SkipDir
			}
			return fw.Add(path)
		})
	}
	if err := addTree(w.cfg.Root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	trigger := make(chan struct{}, 1)
	go func() {
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case e, open := <-fw.Events:
				if !open {
					return
				}
				if e.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if _, excluded := constants.ExcludedDirs[filepath.Base(e.Name)]; !excluded {
							_ = fw.Add(e.Name)
						}
						continue
					}
				}
				if !constants.AllowedExt(filepath.Ext(e.Name)) {
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case trigger <- struct{}{}:
				default:
				}
			case err, open := <-fw.Errors:
				if !open {
					return
				}
				w.logger.Error("filesystem watcher error", "error", err)
			}
		}
	}()
	return trigger, nil
}
