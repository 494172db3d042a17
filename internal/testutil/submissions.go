package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// SubmissionBuilder provides a fluent interface for constructing test submissions.
//
//	sub := testutil.NewSubmission(t, "m1").
//		Text("units=7 R27,401").
//		Rep("R001", "Thabo").
//		Store("Store A", "Gauteng").
//		Claimed("2024-01-10").
//		SentAt("2024-01-10 18:30").
//		Build()
type SubmissionBuilder struct {
	t   *testing.T
	sub model.Submission
}

// NewSubmission starts a submission with the given message ID.
func NewSubmission(t *testing.T, id string) *SubmissionBuilder {
	t.Helper()
	return &SubmissionBuilder{t: t, sub: model.Submission{MessageID: id}}
}

// Text sets the free-text body.
func (b *SubmissionBuilder) Text(text string) *SubmissionBuilder {
	b.sub.RawText = text
	return b
}

// Rep sets the rep ID and name.
func (b *SubmissionBuilder) Rep(id, name string) *SubmissionBuilder {
	b.sub.RepID = id
	b.sub.RepName = name
	return b
}

// Store sets the store and region.
func (b *SubmissionBuilder) Store(store, region string) *SubmissionBuilder {
	b.sub.Store = store
	b.sub.Region = region
	return b
}

// Claimed sets the claimed sale date (format 2006-01-02).
func (b *SubmissionBuilder) Claimed(date string) *SubmissionBuilder {
	b.t.Helper()
	d := b.parse(model.DateLayout, date)
	b.sub.SalesDateClaimed = &d
	return b
}

// SentAt sets the message timestamp (format 2006-01-02 15:04).
func (b *SubmissionBuilder) SentAt(ts string) *SubmissionBuilder {
	b.t.Helper()
	d := b.parse("2006-01-02 15:04", ts)
	b.sub.MessageTimestamp = &d
	return b
}

// Build returns the submission.
func (b *SubmissionBuilder) Build() model.Submission {
	return b.sub
}

func (b *SubmissionBuilder) parse(layout, value string) time.Time {
	b.t.Helper()
	v, err := time.Parse(layout, value)
	if err != nil {
		b.t.Fatalf("invalid fixture time %q: %v", value, err)
	}
	return v
}

// SampleBatch returns a small batch covering every parse status, a duplicate
// and each submission status.
//
//   - m1 on_time, parsed_ok
//   - m2 repeat of m1 sent later (duplicate)
//   - m3 next-morning report, missing units, no rep ID
//   - m4 late, k shorthand, same group as m1
//   - m5 nothing parseable, no claimed date
func SampleBatch(t *testing.T) []model.Submission {
	t.Helper()
	return []model.Submission{
		NewSubmission(t, "m1").Text("units=7 R27,401").Rep("R001", "Thabo").
			Store("Store A", "Gauteng").Claimed("2024-01-10").SentAt("2024-01-10 18:30").Build(),
		NewSubmission(t, "m2").Text("units=7 R27,401").Rep("R001", "Thabo").
			Store("Store A", "Gauteng").Claimed("2024-01-10").SentAt("2024-01-10 18:45").Build(),
		NewSubmission(t, "m3").Text("R850 sold today").Rep("", "Lerato").
			Store("Store B", "Western Cape").Claimed("2024-01-10").SentAt("2024-01-11 08:00").Build(),
		NewSubmission(t, "m4").Text("George: 14.8k and 7 u").Rep("R001", "Thabo").
			Store("Store A", "Gauteng").Claimed("2024-01-10").SentAt("2024-01-10 21:15").Build(),
		NewSubmission(t, "m5").Text("call me").Rep("R003", "Sipho").
			Store("Store C", "Gauteng").SentAt("2024-01-12 09:00").Build(),
	}
}
