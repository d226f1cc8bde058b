// Package export produces XLSX workbooks from the patient archive.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Inzamam1121/Process-Doc/internal/normalize"
	"github.com/Inzamam1121/Process-Doc/internal/repository"
)

// Service is a tiny façade over the patient repository that produces XLSX
// bytes for exports.
type Service struct {
	patients repository.PatientRepository
	logger   *slog.Logger
}

func NewService(patients repository.PatientRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{patients: patients, logger: logger}
}

// ExportPatientsXLSX returns an XLSX workbook (as bytes) holding every live
// row of the archive, ordered by patient name.
func (s *Service) ExportPatientsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.patients.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("query patient records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Patients"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"First Name",
		"Last Name",
		"Date of Birth",
		"Request Date",
		"Original Document",
		"Archived Document",
		"Original Path",
		"Archived Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.PatientFirstName)
		write(2, r.PatientLastName)
		write(3, normalize.DisplayDate(r.DOB))
		write(4, normalize.DisplayDate(r.RequestDate))
		write(5, r.OldDocument)
		write(6, r.NewDocument)
		write(7, r.OldDocumentPath)
		write(8, r.NewDocumentPath)
	}

	_ = f.SetColWidth(sheet, "A", "B", 18) // names
	_ = f.SetColWidth(sheet, "C", "D", 14) // dates
	_ = f.SetColWidth(sheet, "E", "F", 36) // documents
	_ = f.SetColWidth(sheet, "G", "H", 60) // paths

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
