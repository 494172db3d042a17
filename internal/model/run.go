package model

import (
	"time"
)

// RunResult is everything a single batch run produces, handed to each sink.
type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Source     string
	Records    []EnrichedSubmission
	Facts      []DailySalesFact
	Quality    DataQualityReport
}

// Duration reports how long the run took.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunSummary is the stored header of a past run.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Source     string
	RawRows    int
	FactRows   int
}
