package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/salesflow/internal/model"
)

// XLSXSource reads submissions from one worksheet of an Excel workbook.
type XLSXSource struct {
	times *TimeParser
	path  string
	sheet string
}

// NewXLSXSource creates a source for the workbook at path. An empty sheet
// means the first worksheet.
func NewXLSXSource(path, sheet string, times *TimeParser) *XLSXSource {
	if times == nil {
		times = NewTimeParser(nil)
	}
	serial := *times
	serial.serial = true
	return &XLSXSource{path: path, sheet: sheet, times: &serial}
}

// Location implements service.SubmissionSource.
func (s *XLSXSource) Location() string {
	if s.sheet == "" {
		return s.path
	}
	return s.path + "#" + s.sheet
}

// Exists implements service.SubmissionSource.
func (s *XLSXSource) Exists() bool {
	return fileExists(s.path)
}

// Read implements service.SubmissionSource.
func (s *XLSXSource) Read(ctx context.Context) ([]model.Submission, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet %q", s.path, sheet)
	}

	// Raw values keep dates as serial numbers instead of display strings.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty: %w", sheet, errMissingHeader)
	}

	h, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	subs := make([]model.Submission, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlank(row) {
			continue
		}
		subs = append(subs, h.submission(row, s.times))
	}
	return subs, nil
}
