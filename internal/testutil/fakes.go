package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/salesflow/internal/model"
)

// MemorySource is an in-memory SubmissionSource.
type MemorySource struct {
	ReadErr     error
	Name        string
	Submissions []model.Submission
	Missing     bool
}

// Location implements service.SubmissionSource.
func (s *MemorySource) Location() string {
	if s.Name == "" {
		return "memory"
	}
	return s.Name
}

// Exists implements service.SubmissionSource.
func (s *MemorySource) Exists() bool {
	return !s.Missing
}

// Read implements service.SubmissionSource.
func (s *MemorySource) Read(_ context.Context) ([]model.Submission, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	out := make([]model.Submission, len(s.Submissions))
	copy(out, s.Submissions)
	return out, nil
}

// RecordingWriter is a ResultWriter that keeps every result it receives.
type RecordingWriter struct {
	Err     error
	Label   string
	Results []*model.RunResult
	mu      sync.Mutex
}

// Name implements service.ResultWriter.
func (w *RecordingWriter) Name() string {
	if w.Label == "" {
		return "recording"
	}
	return w.Label
}

// Write implements service.ResultWriter.
func (w *RecordingWriter) Write(_ context.Context, result *model.RunResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Results = append(w.Results, result)
	return nil
}
