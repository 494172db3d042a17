// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// SubmissionSource provides the raw submission table for a batch run.
type SubmissionSource interface {
	// Location describes where the source expects its data, for error messages.
	Location() string
	// Exists reports whether the source is present. A missing source aborts the run.
	Exists() bool
	// Read returns every submission in source order.
	Read(ctx context.Context) ([]model.Submission, error)
}

// ResultWriter persists or publishes the artifacts of a run.
type ResultWriter interface {
	// Name identifies the writer in logs and summaries.
	Name() string
	Write(ctx context.Context, result *model.RunResult) error
}

// Storage defines the contract for the run history database.
type Storage interface {
	SaveRun(ctx context.Context, result *model.RunResult) error
	GetLatestRun(ctx context.Context) (*model.RunSummary, error)
	GetRun(ctx context.Context, id string) (*model.RunSummary, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	GetQualityReport(ctx context.Context, runID string) (*model.DataQualityReport, error)
	GetFacts(ctx context.Context, runID string) ([]model.DailySalesFact, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ProgressFunc is called once for every record processed.
type ProgressFunc func()

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
