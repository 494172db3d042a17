package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/salesflow/internal/model"
)

// Tab names.
const (
	TabSubmissions = "Submissions"
	TabFacts       = "Daily Facts"
	TabQuality     = "Data Quality"
)

// FactRow is a single row in the Daily Facts tab.
type FactRow struct {
	SaleDate         string
	Region           string
	Store            string
	RepKey           string
	SubmissionStatus string
	ParseStatus      string
	Revenue          decimal.Decimal
	UnitsSold        int
	Submissions      int
}

// FactTotals is the footer of the Daily Facts tab.
type FactTotals struct {
	Revenue     decimal.Decimal
	UnitsSold   int
	Submissions int
}

// TabData holds everything written for one run.
type TabData struct {
	GeneratedAt time.Time
	RunID       string
	Submissions []model.EnrichedSubmission
	Facts       []FactRow
	Quality     []model.QualityMetric
	Totals      FactTotals
}

// NewTabData converts a run into tab rows. Revenue is carried as a decimal so
// the totals row matches the sum of the rows above it.
func NewTabData(result *model.RunResult) TabData {
	data := TabData{
		GeneratedAt: result.FinishedAt,
		RunID:       result.ID,
		Submissions: result.Records,
		Quality:     result.Quality.Metrics(),
		Facts:       make([]FactRow, 0, len(result.Facts)),
	}

	for _, f := range result.Facts {
		revenue := decimal.NewFromFloat(f.Revenue)
		data.Facts = append(data.Facts, FactRow{
			SaleDate:         f.SaleDateString(),
			Region:           f.Region,
			Store:            f.Store,
			RepKey:           f.RepKey,
			UnitsSold:        f.UnitsSold,
			Revenue:          revenue,
			Submissions:      f.Submissions,
			SubmissionStatus: string(f.SubmissionStatus),
			ParseStatus:      string(f.ParseStatus),
		})
		data.Totals.Revenue = data.Totals.Revenue.Add(revenue)
		data.Totals.UnitsSold += f.UnitsSold
		data.Totals.Submissions += f.Submissions
	}

	return data
}
