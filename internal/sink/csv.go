package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/salesflow/internal/model"
)

// Default output locations.
const (
	DefaultInterimPath = "data/interim/daily_sales_parsed.csv"
	DefaultFactPath    = "data/processed/daily_sales_fact.csv"
	DefaultQualityPath = "data/processed/data_quality_report.csv"
)

// CSVWriter writes the enriched records, daily facts and quality report as
// three CSV files. Missing directories are created.
type CSVWriter struct {
	InterimPath string
	FactPath    string
	QualityPath string
}

// NewCSVWriter creates a writer with the default output locations under root.
func NewCSVWriter(root string) *CSVWriter {
	return &CSVWriter{
		InterimPath: filepath.Join(root, DefaultInterimPath),
		FactPath:    filepath.Join(root, DefaultFactPath),
		QualityPath: filepath.Join(root, DefaultQualityPath),
	}
}

// Name implements service.ResultWriter.
func (w *CSVWriter) Name() string {
	return "csv"
}

// Artifacts lists the files the writer produces.
func (w *CSVWriter) Artifacts() []string {
	return []string{w.InterimPath, w.FactPath, w.QualityPath}
}

// Write implements service.ResultWriter.
func (w *CSVWriter) Write(ctx context.Context, result *model.RunResult) error {
	records := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, SubmissionRow(rec))
	}
	if err := writeCSV(w.InterimPath, SubmissionHeader, records); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	facts := make([][]string, 0, len(result.Facts))
	for _, f := range result.Facts {
		facts = append(facts, FactRow(f))
	}
	if err := writeCSV(w.FactPath, FactHeader, facts); err != nil {
		return err
	}

	return writeCSV(w.QualityPath, QualityHeader, QualityRows(result.Quality))
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
