package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/testutil"
)

func TestAggregate_SampleBatch(t *testing.T) {
	records := NewProcessor(DefaultProcessorOptions()).Process(testutil.SampleBatch(t))

	facts, report := Aggregate(records)
	require.Len(t, facts, 2, "m5 has no sale date and forms no fact")

	assert.Equal(t, "2024-01-10", facts[0].SaleDateString())
	assert.Equal(t, "Gauteng", facts[0].Region)
	assert.Equal(t, "Store A", facts[0].Store)
	assert.Equal(t, "R001", facts[0].RepKey)
	assert.Equal(t, 14, facts[0].UnitsSold)
	assert.Equal(t, 42201.0, facts[0].Revenue)
	assert.Equal(t, 2, facts[0].Submissions)
	assert.Equal(t, model.SubmissionOnTime, facts[0].SubmissionStatus, "tie goes to the first status seen")
	assert.Equal(t, model.ParsedOK, facts[0].ParseStatus)

	assert.Equal(t, "2024-01-10", facts[1].SaleDateString())
	assert.Equal(t, "Western Cape", facts[1].Region)
	assert.Equal(t, "Lerato", facts[1].RepKey)
	assert.Equal(t, 0, facts[1].UnitsSold)
	assert.Equal(t, 850.0, facts[1].Revenue)
	assert.Equal(t, model.SubmissionNextDay, facts[1].SubmissionStatus)
	assert.Equal(t, model.MissingUnits, facts[1].ParseStatus)

	assert.Equal(t, model.DataQualityReport{
		RawRows:            5,
		DuplicatesFlagged:  1,
		MissingUnitsRows:   2,
		MissingRevenueRows: 1,
		MissingBothRows:    1,
		OnTimeRows:         2,
		LateRows:           1,
		NextDayRows:        1,
	}, report)
	assert.Equal(t, 2, report.RowsMissingAny())
}

func TestAggregate_SubmissionsCountNonDuplicates(t *testing.T) {
	records := NewProcessor(DefaultProcessorOptions()).Process(testutil.SampleBatch(t))
	facts, _ := Aggregate(records)

	grouped := 0
	for _, rec := range records {
		if !rec.IsDuplicate && rec.SaleDate != nil {
			grouped++
		}
	}

	total := 0
	for _, f := range facts {
		total += f.Submissions
	}
	assert.Equal(t, grouped, total)
}

func TestAggregate_RevenueSumIsExact(t *testing.T) {
	day := date(t, "2024-02-01")
	records := make([]model.EnrichedSubmission, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, record(day, "North", "S1", "R1", nil, floatPtr(0.1)))
	}

	facts, _ := Aggregate(records)
	require.Len(t, facts, 1)
	assert.Equal(t, 1.0, facts[0].Revenue)
	assert.Equal(t, 10, facts[0].Submissions)
}

func TestAggregate_NullsCountAsZero(t *testing.T) {
	day := date(t, "2024-02-01")
	records := []model.EnrichedSubmission{
		record(day, "North", "S1", "R1", intPtr(3), nil),
		record(day, "North", "S1", "R1", nil, floatPtr(250)),
	}

	facts, _ := Aggregate(records)
	require.Len(t, facts, 1)
	assert.Equal(t, 3, facts[0].UnitsSold)
	assert.Equal(t, 250.0, facts[0].Revenue)
	assert.Equal(t, 2, facts[0].Submissions)
}

func TestAggregate_Mode(t *testing.T) {
	day := date(t, "2024-02-01")
	late := record(day, "North", "S1", "R1", intPtr(1), floatPtr(1))
	late.SubmissionStatus = model.SubmissionLate
	late.ParseStatus = model.MissingUnits
	onTime := record(day, "North", "S1", "R1", intPtr(1), floatPtr(1))
	onTime.SubmissionStatus = model.SubmissionOnTime

	tests := []struct {
		name       string
		wantStatus model.SubmissionStatus
		wantParse  model.ParseStatus
		records    []model.EnrichedSubmission
	}{
		{
			name:       "majority wins",
			records:    []model.EnrichedSubmission{late, onTime, onTime},
			wantStatus: model.SubmissionOnTime,
			wantParse:  model.ParsedOK,
		},
		{
			name:       "tie keeps first seen",
			records:    []model.EnrichedSubmission{late, onTime},
			wantStatus: model.SubmissionLate,
			wantParse:  model.MissingUnits,
		},
		{
			name:       "tie keeps first seen reversed",
			records:    []model.EnrichedSubmission{onTime, late},
			wantStatus: model.SubmissionOnTime,
			wantParse:  model.ParsedOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, _ := Aggregate(tt.records)
			require.Len(t, facts, 1)
			assert.Equal(t, tt.wantStatus, facts[0].SubmissionStatus)
			assert.Equal(t, tt.wantParse, facts[0].ParseStatus)
		})
	}
}

func TestAggregate_Ordering(t *testing.T) {
	jan := date(t, "2024-01-31")
	feb := date(t, "2024-02-01")
	records := []model.EnrichedSubmission{
		record(feb, "North", "S2", "R1", intPtr(1), nil),
		record(feb, "North", "S1", "R2", intPtr(1), nil),
		record(feb, "North", "S1", "R1", intPtr(1), nil),
		record(feb, "East", "S9", "R9", intPtr(1), nil),
		record(jan, "West", "S1", "R1", intPtr(1), nil),
	}

	facts, _ := Aggregate(records)
	require.Len(t, facts, 5)

	got := make([]string, 0, len(facts))
	for _, f := range facts {
		got = append(got, f.SaleDateString()+"/"+f.Region+"/"+f.Store+"/"+f.RepKey)
	}
	assert.Equal(t, []string{
		"2024-01-31/West/S1/R1",
		"2024-02-01/East/S9/R9",
		"2024-02-01/North/S1/R1",
		"2024-02-01/North/S1/R2",
		"2024-02-01/North/S2/R1",
	}, got)
}

func TestAggregate_IncompleteKeysFormNoFact(t *testing.T) {
	day := date(t, "2024-02-01")

	tests := []struct {
		name   string
		record model.EnrichedSubmission
	}{
		{name: "no sale date", record: record(nil, "North", "S1", "R1", intPtr(4), floatPtr(100))},
		{name: "no region", record: record(day, "", "S1", "R1", intPtr(4), floatPtr(100))},
		{name: "no store", record: record(day, "North", "", "R1", intPtr(4), floatPtr(100))},
		{name: "no rep", record: record(day, "North", "S1", "", intPtr(4), floatPtr(100))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := record(day, "North", "S1", "R1", intPtr(1), floatPtr(10))

			facts, report := Aggregate([]model.EnrichedSubmission{kept, tt.record})
			require.Len(t, facts, 1)
			assert.Equal(t, 1, facts[0].UnitsSold)
			assert.Equal(t, 10.0, facts[0].Revenue)
			assert.Equal(t, 1, facts[0].Submissions)
			assert.Equal(t, 2, report.RawRows, "the quality report still counts the record")
		})
	}
}

func TestAggregate_UnitsOnlyRowsMissRevenue(t *testing.T) {
	subs := []model.Submission{
		testutil.NewSubmission(t, "u1").Text("7 units").Rep("R1", "Thabo").
			Store("S1", "North").Claimed("2024-02-01").SentAt("2024-02-01 17:00").Build(),
		testutil.NewSubmission(t, "u2").Text("u 3").Rep("R1", "Thabo").
			Store("S1", "North").Claimed("2024-02-01").SentAt("2024-02-01 17:30").Build(),
		testutil.NewSubmission(t, "u3").Text("units=2 R500").Rep("R1", "Thabo").
			Store("S1", "North").Claimed("2024-02-01").SentAt("2024-02-01 18:00").Build(),
	}
	records := NewProcessor(DefaultProcessorOptions()).Process(subs)

	facts, report := Aggregate(records)
	require.Len(t, facts, 1)
	assert.Equal(t, 12, facts[0].UnitsSold)
	assert.Equal(t, 500.0, facts[0].Revenue, "unit counts never leak into revenue")
	assert.Equal(t, model.MissingRevenue, facts[0].ParseStatus)

	assert.Equal(t, 2, report.MissingRevenueRows)
	assert.Equal(t, 0, report.MissingUnitsRows)
	assert.Equal(t, 0, report.MissingBothRows)
}

func TestQualityReport_IncludesDuplicates(t *testing.T) {
	day := date(t, "2024-02-01")
	dup := record(day, "North", "S1", "R1", nil, nil)
	dup.IsDuplicate = true
	dup.SubmissionStatus = model.SubmissionLate

	report := QualityReport([]model.EnrichedSubmission{
		record(day, "North", "S1", "R1", nil, nil),
		dup,
	})

	assert.Equal(t, 2, report.RawRows)
	assert.Equal(t, 1, report.DuplicatesFlagged)
	assert.Equal(t, 2, report.MissingUnitsRows)
	assert.Equal(t, 2, report.MissingRevenueRows)
	assert.Equal(t, 2, report.MissingBothRows)
	assert.Equal(t, 1, report.LateRows)
	assert.Equal(t, 2, report.RowsMissingAny())
}

func TestAggregate_Empty(t *testing.T) {
	facts, report := Aggregate(nil)
	assert.Empty(t, facts)
	assert.Equal(t, model.DataQualityReport{}, report)
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return &d
}

func record(saleDate *time.Time, region, store, rep string, units *int, revenue *float64) model.EnrichedSubmission {
	return model.EnrichedSubmission{
		Submission: model.Submission{
			Region: region,
			Store:  store,
			RepID:  rep,
		},
		SaleDate:         saleDate,
		RepKey:           rep,
		UnitsSold:        units,
		Revenue:          revenue,
		SubmissionStatus: model.SubmissionOnTime,
		ParseStatus:      model.ParseStatusFor(units, revenue),
	}
}
