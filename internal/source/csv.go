package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/salesflow/internal/model"
)

// ctxCheckEvery is how many rows are read between cancellation checks.
const ctxCheckEvery = 1000

// CSVSource reads submissions from a CSV export with a header row.
type CSVSource struct {
	times *TimeParser
	path  string
}

// NewCSVSource creates a source for the CSV file at path.
func NewCSVSource(path string, times *TimeParser) *CSVSource {
	if times == nil {
		times = NewTimeParser(nil)
	}
	return &CSVSource{path: path, times: times}
}

// Location implements service.SubmissionSource.
func (s *CSVSource) Location() string {
	return s.path
}

// Exists implements service.SubmissionSource.
func (s *CSVSource) Exists() bool {
	return fileExists(s.path)
}

// Read implements service.SubmissionSource.
func (s *CSVSource) Read(ctx context.Context) ([]model.Submission, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	return readCSV(ctx, f, s.times)
}

func readCSV(ctx context.Context, r io.Reader, times *TimeParser) ([]model.Submission, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", errMissingHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	h, err := parseHeader(first)
	if err != nil {
		return nil, err
	}

	var subs []model.Submission
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlank(row) {
			continue
		}
		subs = append(subs, h.submission(row, times))
	}

	return subs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
