// Package model defines the core data structures for the salesflow pipeline.
package model

import (
	"time"
)

// DateLayout is the canonical rendering of calendar dates.
const DateLayout = "2006-01-02"

// TimestampLayout is the canonical rendering of input timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Submission is one raw sales report message as read from the source table.
// Empty strings stand for absent values.
type Submission struct {
	MessageTimestamp *time.Time
	SalesDateClaimed *time.Time
	MessageID        string
	RawText          string
	RepID            string
	RepName          string
	Store            string
	Region           string
}

// RepKey returns the identity used to group sales by representative.
// The stable rep ID wins over the free-text name.
func (s Submission) RepKey() string {
	if s.RepID != "" {
		return s.RepID
	}
	return s.RepName
}

// EnrichedSubmission is a Submission plus every field derived by the pipeline.
type EnrichedSubmission struct {
	UnitsSold          *int
	Revenue            *float64
	SaleDate           *time.Time // UTC midnight of the resolved calendar date
	DateResolutionRule DateRule
	SubmissionStatus   SubmissionStatus
	ParseStatus        ParseStatus
	RepKey             string
	DupKey             string
	Submission
	IsDuplicate bool
}

// SaleDateString renders SaleDate, or "" when it is unknown.
func (e EnrichedSubmission) SaleDateString() string {
	if e.SaleDate == nil {
		return ""
	}
	return e.SaleDate.Format(DateLayout)
}
