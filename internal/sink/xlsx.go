package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/salesflow/internal/model"
)

// Workbook sheet names.
const (
	SheetSubmissions = "Submissions"
	SheetFacts       = "Daily Facts"
	SheetQuality     = "Data Quality"
)

// DefaultWorkbookPath is where the workbook goes when none is configured.
const DefaultWorkbookPath = "data/processed/daily_sales.xlsx"

// XLSXWriter writes all three run tables into one Excel workbook.
type XLSXWriter struct {
	Path string
}

// NewXLSXWriter creates a workbook writer for path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{Path: path}
}

// Name implements service.ResultWriter.
func (w *XLSXWriter) Name() string {
	return "xlsx"
}

// Artifacts lists the files the writer produces.
func (w *XLSXWriter) Artifacts() []string {
	return []string{w.Path}
}

// Write implements service.ResultWriter.
func (w *XLSXWriter) Write(ctx context.Context, result *model.RunResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0EBF5"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	timestampStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("failed to create timestamp style: %w", err)
	}

	submissions := make([][]any, 0, len(result.Records))
	for _, rec := range result.Records {
		submissions = append(submissions, submissionCells(rec))
	}
	facts := make([][]any, 0, len(result.Facts))
	for _, fact := range result.Facts {
		facts = append(facts, factCells(fact))
	}
	quality := make([][]any, 0, len(model.QualityMetricNames))
	for _, m := range result.Quality.Metrics() {
		quality = append(quality, []any{m.Name, m.Value})
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{name: SheetSubmissions, header: SubmissionHeader, rows: submissions},
		{name: SheetFacts, header: FactHeader, rows: facts},
		{name: SheetQuality, header: QualityHeader, rows: quality},
	}

	for i, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table.name, err)
		}
		if err := writeSheet(f, table.name, table.header, table.rows, headerStyle); err != nil {
			return err
		}
	}

	// message_timestamp is column B.
	if len(submissions) > 0 {
		last := fmt.Sprintf("B%d", len(submissions)+1)
		if err := f.SetCellStyle(SheetSubmissions, "B2", last, timestampStyle); err != nil {
			return fmt.Errorf("failed to style timestamps: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.Path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.Path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func submissionCells(rec model.EnrichedSubmission) []any {
	return []any{
		rec.MessageID,
		timeCell(rec.MessageTimestamp),
		timeCell(rec.SalesDateClaimed),
		rec.RawText,
		rec.RepID,
		rec.RepName,
		rec.Store,
		rec.Region,
		intCell(rec.UnitsSold),
		floatCell(rec.Revenue),
		rec.SaleDateString(),
		string(rec.DateResolutionRule),
		string(rec.SubmissionStatus),
		rec.RepKey,
		rec.DupKey,
		rec.IsDuplicate,
		string(rec.ParseStatus),
	}
}

func factCells(f model.DailySalesFact) []any {
	return []any{
		f.SaleDateString(),
		f.Region,
		f.Store,
		f.RepKey,
		f.UnitsSold,
		f.Revenue,
		f.Submissions,
		string(f.SubmissionStatus),
		string(f.ParseStatus),
	}
}

func timeCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
