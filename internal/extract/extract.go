// Package extract produces best-effort patient identity fields from a
// classified document using a prioritized chain of strategies.
package extract

import (
	"log/slog"

	"github.com/Inzamam1121/Process-Doc/internal/classify"
	"github.com/Inzamam1121/Process-Doc/internal/document"
	"github.com/Inzamam1121/Process-Doc/internal/entity"
	"github.com/Inzamam1121/Process-Doc/internal/normalize"
)

// StageResult is the outcome of one extraction strategy. Err records why a
// stage produced nothing; it never propagates past the extractor.
type StageResult struct {
	Fields entity.ExtractedFields
	Err    error
}

// strategyFunc is a pure function from document content to fields. Strategies
// are tried in order and merged first-field-wins.
type strategyFunc func(src *source) StageResult

// source is the loaded content a strategy inspects.
type source struct {
	doc  *document.Document // nil for plain-text files
	text string             // body text for regex strategies
}

// Extractor runs the table and paragraph strategies. The footer strategy is
// a separate retry tier (FooterFields) because its acceptance rule differs.
type Extractor struct {
	logger *slog.Logger
	chain  []strategyFunc
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger: logger,
		chain:  []strategyFunc{tableStrategy, paragraphStrategy},
	}
}

// Extract loads path according to its classification and runs the strategy
// chain. It never returns an error: total failure is an empty field set.
func (e *Extractor) Extract(path string, kind classify.Kind) entity.ExtractedFields {
	src, err := loadSource(path, kind)
	if err != nil {
		e.logger.Debug("extract.load.failed", "path", path, "err", err)
		return entity.ExtractedFields{}
	}

	var merged entity.ExtractedFields
	for _, strat := range e.chain {
		res := strat(src)
		if res.Err != nil {
			e.logger.Debug("extract.stage.failed", "path", path, "err", res.Err)
			continue
		}
		merged = mergeFields(merged, res.Fields)
		if merged.PatientName != "" && merged.DOB != "" && merged.RequestDate != "" {
			break
		}
	}

	merged.PatientName = normalize.CleanName(merged.PatientName)
	return merged
}

func loadSource(path string, kind classify.Kind) (*source, error) {
	switch kind {
	case classify.StructuredDocument:
		doc, err := document.Open(path)
		if err != nil {
			return nil, err
		}
		return &source{doc: doc, text: doc.BodyText()}, nil
	case classify.Text:
		text, err := readText(path)
		if err != nil {
			return nil, err
		}
		return &source{text: text}, nil
	default:
		// Legacy binary and unreadable files carry nothing the chain can use.
		return &source{}, nil
	}
}

// mergeFields keeps existing values and fills gaps from next.
func mergeFields(have, next entity.ExtractedFields) entity.ExtractedFields {
	if have.PatientName == "" && next.PatientName != "" {
		have.PatientName = next.PatientName
		have.Source = next.Source
	}
	if have.DOB == "" && next.DOB != "" {
		have.DOB = next.DOB
		if have.Source == "" {
			have.Source = next.Source
		}
	}
	if have.RequestDate == "" && next.RequestDate != "" {
		have.RequestDate = next.RequestDate
		if have.Source == "" {
			have.Source = next.Source
		}
	}
	return have
}
