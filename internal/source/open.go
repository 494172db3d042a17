package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/salesflow/internal/service"
)

var (
	// ErrUnsupportedFormat is returned for input files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	errMissingHeader = errors.New("missing header row")
)

// Options configures how a source is opened.
type Options struct {
	Location *time.Location // Zone for timestamps without an offset; nil means UTC
	Sheet    string         // Worksheet for XLSX input; empty means the first sheet
}

// Open picks a source for path by its file extension.
func Open(path string, opts Options) (service.SubmissionSource, error) {
	times := NewTimeParser(opts.Location)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return NewCSVSource(path, times), nil
	case ".xlsx", ".xlsm":
		return NewXLSXSource(path, opts.Sheet, times), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
