package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/salesflow/internal/model"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func datePtr(s string) *time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func record(id, rep, store string, date *time.Time, units *int, revenue *float64) model.EnrichedSubmission {
	return model.EnrichedSubmission{
		Submission: model.Submission{MessageID: id, Store: store},
		RepKey:     rep,
		SaleDate:   date,
		UnitsSold:  units,
		Revenue:    revenue,
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		want string
		rec  model.EnrichedSubmission
	}{
		{
			name: "all fields present",
			rec:  record("m1", "R001", "Store A", datePtr("2024-01-10"), intPtr(7), floatPtr(27401)),
			want: "R001|Store A|2024-01-10|7|27401",
		},
		{
			name: "fractional revenue",
			rec:  record("m1", "R001", "Store A", datePtr("2024-01-10"), intPtr(7), floatPtr(450.5)),
			want: "R001|Store A|2024-01-10|7|450.5",
		},
		{
			name: "nulls render as sentinel",
			rec:  record("m1", "", "", nil, nil, nil),
			want: "NA|NA|NA|NA|NA",
		},
		{
			name: "zero values are not null",
			rec:  record("m1", "R001", "Store A", datePtr("2024-01-10"), intPtr(0), floatPtr(0)),
			want: "R001|Store A|2024-01-10|0|0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.rec))
		})
	}
}

func TestFlag_FirstOccurrenceWins(t *testing.T) {
	d := datePtr("2024-01-10")
	records := []model.EnrichedSubmission{
		record("m1", "R001", "Store A", d, intPtr(7), floatPtr(1000)),
		record("m2", "R001", "Store A", d, intPtr(7), floatPtr(1000)),
		record("m3", "R001", "Store A", d, intPtr(7), floatPtr(1000)),
		record("m4", "R002", "Store A", d, intPtr(7), floatPtr(1000)),
	}

	flagged := Flag(records)

	assert.Equal(t, 2, flagged)
	assert.False(t, records[0].IsDuplicate)
	assert.True(t, records[1].IsDuplicate)
	assert.True(t, records[2].IsDuplicate)
	assert.False(t, records[3].IsDuplicate)
	assert.Equal(t, records[0].DupKey, records[1].DupKey)
}

func TestFlag_OrderDecidesFirst(t *testing.T) {
	d := datePtr("2024-01-10")
	a := record("m1", "R001", "Store A", d, intPtr(7), floatPtr(1000))
	b := record("m2", "R001", "Store A", d, intPtr(7), floatPtr(1000))

	forward := []model.EnrichedSubmission{a, b}
	Flag(forward)
	assert.Equal(t, "m2", flaggedIDs(forward)[0])

	reversed := []model.EnrichedSubmission{b, a}
	Flag(reversed)
	assert.Equal(t, "m1", flaggedIDs(reversed)[0])
}

func TestFlag_PartialMatchesAreNotDuplicates(t *testing.T) {
	d := datePtr("2024-01-10")
	records := []model.EnrichedSubmission{
		record("m1", "R001", "Store A", d, intPtr(7), floatPtr(1000)),
		record("m2", "R001", "Store A", d, intPtr(7), floatPtr(1200)),
		record("m3", "R001", "Store A", d, intPtr(8), floatPtr(1000)),
		record("m4", "R001", "Store B", d, intPtr(7), floatPtr(1000)),
		record("m5", "R001", "Store A", datePtr("2024-01-11"), intPtr(7), floatPtr(1000)),
		record("m6", "R001", "Store A", d, nil, floatPtr(1000)),
	}

	assert.Equal(t, 0, Flag(records))
	assert.Empty(t, flaggedIDs(records))
}

func TestFlag_NullKeysStillMatch(t *testing.T) {
	records := []model.EnrichedSubmission{
		record("m1", "R001", "Store A", nil, nil, nil),
		record("m2", "R001", "Store A", nil, nil, nil),
	}

	assert.Equal(t, 1, Flag(records))
	assert.Equal(t, []string{"m2"}, flaggedIDs(records))
}

func flaggedIDs(records []model.EnrichedSubmission) []string {
	var ids []string
	for _, r := range records {
		if r.IsDuplicate {
			ids = append(ids, r.MessageID)
		}
	}
	return ids
}
