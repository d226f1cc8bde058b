package extract

import (
	"regexp"

	"github.com/Inzamam1121/Process-Doc/internal/document"
	"github.com/Inzamam1121/Process-Doc/internal/entity"
)

// reFooter matches the fixed footer layout of certain referral letters:
// "LastName, FirstMiddle [patientId] MM/DD/YYYY MM/DD/YYYY" where the two
// dates are date of birth then admit date.
var reFooter = regexp.MustCompile(`([A-Za-z\-']+),\s+([A-Za-z\-'\.]+(?:\s+[A-Za-z\-'\.]+)*)(?:\s+(\d+))?\s+(\d{2}/\d{2}/\d{4})\s+(\d{2}/\d{2}/\d{4})`)

// FooterFields opens the document container regardless of classification and
// matches the footer pattern against all footer text. The error reports why
// the footer could not be read; document.ErrNotContainer in particular marks
// corrupt or alias files.
func FooterFields(path string) (entity.ExtractedFields, error) {
	doc, err := document.Open(path)
	if err != nil {
		return entity.ExtractedFields{}, err
	}

	text := doc.FooterText()
	if text == "" {
		return entity.ExtractedFields{}, nil
	}

	m := reFooter.FindStringSubmatch(text)
	if m == nil {
		return entity.ExtractedFields{}, nil
	}

	lastName, firstMiddle := m[1], m[2]
	return entity.ExtractedFields{
		PatientName: firstMiddle + " " + lastName,
		DOB:         m[4],
		RequestDate: m[5],
		Source:      entity.SourceFooter,
	}, nil
}
