// Package processor coordinates one folder pass: classify every candidate
// file, extract fields, archive or route it, then persist the batch.
package processor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Inzamam1121/Process-Doc/constants"
	"github.com/Inzamam1121/Process-Doc/internal/archive"
	"github.com/Inzamam1121/Process-Doc/internal/classify"
	"github.com/Inzamam1121/Process-Doc/internal/entity"
	"github.com/Inzamam1121/Process-Doc/internal/extract"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
)

// Processor runs classify, extract, archive, and persist for one folder.
type Processor struct {
	Logger     *slog.Logger
	Classifier *classify.Classifier
	Extractor  *extract.Extractor
	Patients   repository.PatientRepository
}

func NewProcessor(logger *slog.Logger, classifier *classify.Classifier, extractor *extract.Extractor, patients repository.PatientRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Classifier: classifier,
		Extractor:  extractor,
		Patients:   patients,
	}
}

// ProcessFolder handles one folder's candidate files. It reports whether the
// pass succeeded and the cumulative number of archived documents in the
// folder's Processed directory. A pass with no archivable records is not a
// success; the folder stays eligible for rescan.
func (p *Processor) ProcessFolder(ctx context.Context, folder string, files []string) (bool, int) {
	batchID := uuid.New()
	log := p.Logger.With("batch_id", batchID, "folder", folder)
	log.Info("processor.folder.start", "candidates", len(files))

	folders, err := archive.InitFolders(folder)
	if err != nil {
		log.Error("processor.folder.init_failed", "err", err)
		return false, 0
	}
	builder := archive.NewBuilder(folders, log)

	var records []*entity.PatientRecord
	routed := map[archive.Route]int{}
	for _, name := range files {
		if ctx.Err() != nil {
			log.Warn("processor.folder.cancelled", "err", ctx.Err())
			return false, 0
		}

		path := filepath.Join(folder, name)
		kind := p.Classifier.Classify(path)
		fields := p.Extractor.Extract(path, kind)

		res := builder.Build(path, fields)
		routed[res.Route]++
		if res.Record != nil {
			log.Debug("processor.file.archived",
				"old_document", res.Record.OldDocument,
				"new_document", res.Record.NewDocument,
				"source", fields.Source)
			records = append(records, res.Record)
		} else {
			log.Info("processor.file.routed", "file", name, "route", res.Route)
		}
	}

	if len(records) == 0 {
		log.Warn("processor.folder.empty_batch", "routed", len(files))
		return false, 0
	}

	inserted, err := p.Patients.ReplaceBatch(ctx, records)
	if err != nil {
		log.Error("processor.folder.persist_failed", "err", err)
		return false, 0
	}

	processed := countArchived(folders.Processed)
	log.Info("processor.folder.done",
		"inserted", inserted,
		"archived", routed[archive.RouteArchived],
		"unprocessed_files", routed[archive.RouteUnprocessedFiles],
		"unprocessed_links", routed[archive.RouteUnprocessedLinks],
		"skipped", routed[archive.RouteSkipped],
		"processed_total", processed)
	return true, processed
}

// countArchived counts the documents accumulated in Processed across all
// passes, which is what the folder manifest records.
func countArchived(processedDir string) int {
	entries, err := os.ReadDir(processedDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if constants.AllowedExt(filepath.Ext(e.Name())) {
			n++
		}
	}
	return n
}
