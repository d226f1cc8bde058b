package extract

import (
	"os"
	"regexp"
	"strings"

	"github.com/Inzamam1121/Process-Doc/internal/entity"
)

// Body-text regexes, the fallback when no table is present. Capture groups
// mirror the labeled field layouts seen in referral letters.
var (
	rePatient = regexp.MustCompile(`(?i)(?:PATIENT|Patient|Name|Patient Information|RE):\s*\n*\s*([\w\s,]+)`)

	// Labeled DOB, or a date on a Re: subject line for letters that only
	// reference the DOB contextually.
	reDOB = regexp.MustCompile(`(?i)(?:DOB|Date of Birth|DateOfBirth):\s*\n*\s*(\d{1,4}/\d{1,2}/\d{1,4}|\d{8})` +
		`|Re:\s+.*?\b(\d{1,4}/\d{1,2}/\d{1,4}|\d{8})\b`)

	reRequestDate = regexp.MustCompile(`(?i)(?:Date|ADM DT|Admit Date|Request Date|Date ordered|DATE OF CONSULT):` +
		`\s*\n*\s*(\d{1,4}/\d{1,2}/\d{1,4}(?:\s*\d{1,2}:\d{2}(?:AM|PM)?)?)`)
)

// paragraphStrategy applies the three regexes to concatenated body text. It
// does not run for structured documents that have tables; the table scan is
// authoritative there even when the raw text would also match.
func paragraphStrategy(src *source) StageResult {
	if src.doc != nil && src.doc.HasTables() {
		return StageResult{}
	}
	return StageResult{Fields: regexFields(src.text)}
}

// regexFields extracts the three fields from free text.
func regexFields(text string) entity.ExtractedFields {
	fields := entity.ExtractedFields{Source: entity.SourceParagraph}

	if m := rePatient.FindStringSubmatch(text); m != nil {
		fields.PatientName = strings.TrimSpace(m[1])
	}
	if m := reDOB.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			fields.DOB = m[1]
		} else {
			fields.DOB = m[2]
		}
	}
	if m := reRequestDate.FindStringSubmatch(text); m != nil {
		// Any trailing time component is discarded.
		if parts := strings.Fields(m[1]); len(parts) > 0 {
			fields.RequestDate = parts[0]
		}
	}
	return fields
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
