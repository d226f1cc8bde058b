package entity

// FieldSource identifies which extraction strategy produced a field set.
type FieldSource string

const (
	SourceTable     FieldSource = "table"
	SourceParagraph FieldSource = "paragraph"
	SourceFooter    FieldSource = "footer"
)

// ExtractedFields is the transient result of field extraction for one file.
// Fields are raw captures; normalization happens downstream.
type ExtractedFields struct {
	PatientName string
	DOB         string
	RequestDate string
	Source      FieldSource
}

// Empty reports whether no field was extracted at all.
func (f ExtractedFields) Empty() bool {
	return f.PatientName == "" && f.DOB == "" && f.RequestDate == ""
}
