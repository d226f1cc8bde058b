package extract

import (
	"strings"

	"github.com/Inzamam1121/Process-Doc/internal/entity"
)

// Label sets for the table scan. Keys are normalized first-cell texts.
var (
	nameLabels    = map[string]struct{}{"patient": {}, "patient name": {}, "name": {}}
	dobLabels     = map[string]struct{}{"date of birth": {}, "dob": {}}
	requestLabels = map[string]struct{}{"date": {}, "admit date": {}, "date of visit": {}}
)

// tableStrategy scans structured-document tables for labeled rows. It only
// applies when the document actually has tables; the last matching row wins
// when a label repeats.
func tableStrategy(src *source) StageResult {
	if src.doc == nil || !src.doc.HasTables() {
		return StageResult{}
	}

	fields := entity.ExtractedFields{Source: entity.SourceTable}
	for _, tbl := range src.doc.Tables {
		for _, row := range tbl.Rows {
			if len(row) < 2 {
				continue
			}
			label := normalizeLabel(row[0])
			value := strings.Join(strings.Fields(row[1]), " ")

			switch {
			case has(nameLabels, label):
				fields.PatientName = value
			case has(dobLabels, label):
				// First token only, dropping trailing age annotations.
				if parts := strings.Fields(value); len(parts) > 0 {
					fields.DOB = parts[0]
				}
			case has(requestLabels, label):
				fields.RequestDate = value
			}
		}
	}
	return StageResult{Fields: fields}
}

// normalizeLabel lowercases, collapses whitespace and strips colons from a
// first-cell label.
func normalizeLabel(cell string) string {
	label := strings.Join(strings.Fields(cell), " ")
	label = strings.ReplaceAll(label, ":", "")
	return strings.ToLower(strings.TrimSpace(label))
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
