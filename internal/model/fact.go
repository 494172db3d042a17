package model

import (
	"time"
)

// DailySalesFact is one row of the deduplicated daily fact table, keyed by
// (sale_date, region, store, rep_key).
type DailySalesFact struct {
	SaleDate         *time.Time
	Region           string
	Store            string
	RepKey           string
	SubmissionStatus SubmissionStatus
	ParseStatus      ParseStatus
	Revenue          float64
	UnitsSold        int
	Submissions      int
}

// SaleDateString renders SaleDate, or "" when it is unknown.
func (f DailySalesFact) SaleDateString() string {
	if f.SaleDate == nil {
		return ""
	}
	return f.SaleDate.Format(DateLayout)
}

// Quality metric names, in report order.
const (
	MetricRawRows            = "raw_rows"
	MetricDuplicatesFlagged  = "duplicates_flagged"
	MetricMissingUnitsRows   = "missing_units_rows"
	MetricMissingRevenueRows = "missing_revenue_rows"
	MetricMissingBothRows    = "missing_both_rows"
	MetricOnTimeRows         = "on_time_rows"
	MetricLateRows           = "late_rows"
	MetricNextDayRows        = "next_day_rows"
)

// QualityMetricNames lists the report metrics in their fixed order.
var QualityMetricNames = []string{
	MetricRawRows,
	MetricDuplicatesFlagged,
	MetricMissingUnitsRows,
	MetricMissingRevenueRows,
	MetricMissingBothRows,
	MetricOnTimeRows,
	MetricLateRows,
	MetricNextDayRows,
}

// DataQualityReport holds raw-feed health counters over the undeduplicated batch.
type DataQualityReport struct {
	RawRows            int
	DuplicatesFlagged  int
	MissingUnitsRows   int
	MissingRevenueRows int
	MissingBothRows    int
	OnTimeRows         int
	LateRows           int
	NextDayRows        int
}

// QualityMetric is one (metric, value) row of the report table.
type QualityMetric struct {
	Name  string
	Value int
}

// Metrics returns the report as (metric, value) rows in QualityMetricNames order.
func (r DataQualityReport) Metrics() []QualityMetric {
	return []QualityMetric{
		{Name: MetricRawRows, Value: r.RawRows},
		{Name: MetricDuplicatesFlagged, Value: r.DuplicatesFlagged},
		{Name: MetricMissingUnitsRows, Value: r.MissingUnitsRows},
		{Name: MetricMissingRevenueRows, Value: r.MissingRevenueRows},
		{Name: MetricMissingBothRows, Value: r.MissingBothRows},
		{Name: MetricOnTimeRows, Value: r.OnTimeRows},
		{Name: MetricLateRows, Value: r.LateRows},
		{Name: MetricNextDayRows, Value: r.NextDayRows},
	}
}

// RowsMissingAny is the number of rows missing at least one numeric field.
func (r DataQualityReport) RowsMissingAny() int {
	return r.MissingUnitsRows + r.MissingRevenueRows - r.MissingBothRows
}

// QualityReportFromMetrics rebuilds a report from stored (metric, value) rows.
// Unknown metric names are ignored.
func QualityReportFromMetrics(metrics []QualityMetric) DataQualityReport {
	var r DataQualityReport
	for _, m := range metrics {
		switch m.Name {
		case MetricRawRows:
			r.RawRows = m.Value
		case MetricDuplicatesFlagged:
			r.DuplicatesFlagged = m.Value
		case MetricMissingUnitsRows:
			r.MissingUnitsRows = m.Value
		case MetricMissingRevenueRows:
			r.MissingRevenueRows = m.Value
		case MetricMissingBothRows:
			r.MissingBothRows = m.Value
		case MetricOnTimeRows:
			r.OnTimeRows = m.Value
		case MetricLateRows:
			r.LateRows = m.Value
		case MetricNextDayRows:
			r.NextDayRows = m.Value
		}
	}
	return r
}
