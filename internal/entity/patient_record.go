package entity

// PatientRecord is the unit of persistence for one matched source document.
// A record is only built once a patient name and a date of birth have been
// extracted; the request date may be absent.
type PatientRecord struct {
	PatientFirstName string `json:"patient_first_name"`
	PatientLastName  string `json:"patient_last_name"`
	DOB              string `json:"dob"`          // canonical yyyymmdd
	RequestDate      string `json:"request_date"` // canonical yyyymmdd, may be empty
	OldDocument      string `json:"old_document"` // original filename, natural key
	NewDocument      string `json:"new_document"` // archived filename
	OldDocumentPath  string `json:"old_document_path"`
	NewDocumentPath  string `json:"new_document_path"`
	IsDeleted        bool   `json:"is_deleted"`
}
