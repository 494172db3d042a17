package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
	"github.com/schollz/progressbar/v3"
)

// NewProgressBar creates a record counter bar writing to w.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// ProgressSource wraps a submission source and shows a bar sized to the
// batch it reads.
type ProgressSource struct {
	service.SubmissionSource
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// NewProgressSource wraps src, drawing the bar on w.
func NewProgressSource(src service.SubmissionSource, w io.Writer, description string) *ProgressSource {
	return &ProgressSource{SubmissionSource: src, w: w, description: description}
}

// Read implements service.SubmissionSource.
func (s *ProgressSource) Read(ctx context.Context) ([]model.Submission, error) {
	subs, err := s.SubmissionSource.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		s.bar = NewProgressBar(s.w, len(subs), s.description)
	}
	return subs, nil
}

// Progress advances the bar by one record. It is a no-op before Read and
// safe for concurrent use.
func (s *ProgressSource) Progress() {
	if s.bar == nil {
		return
	}
	if err := s.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}
