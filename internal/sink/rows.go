// Package sink writes run results to CSV files and Excel workbooks.
package sink

import (
	"strconv"
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// SubmissionHeader is the column order of the enriched submissions table.
var SubmissionHeader = []string{
	"message_id",
	"message_timestamp",
	"sales_date_claimed",
	"raw_text",
	"rep_id",
	"rep_name",
	"store",
	"region",
	"units_sold",
	"revenue",
	"sale_date",
	"date_resolution_rule",
	"submission_status",
	"rep_key",
	"dup_key",
	"is_duplicate",
	"parse_status",
}

// FactHeader is the column order of the daily fact table.
var FactHeader = []string{
	"sale_date",
	"region",
	"store",
	"rep_key",
	"units_sold",
	"revenue",
	"submissions",
	"submission_status",
	"parse_status",
}

// QualityHeader is the column order of the data-quality report.
var QualityHeader = []string{"metric", "value"}

// SubmissionRow renders an enriched record. Absent values are empty cells.
func SubmissionRow(rec model.EnrichedSubmission) []string {
	return []string{
		rec.MessageID,
		formatTime(rec.MessageTimestamp, model.TimestampLayout),
		formatTime(rec.SalesDateClaimed, model.TimestampLayout),
		rec.RawText,
		rec.RepID,
		rec.RepName,
		rec.Store,
		rec.Region,
		formatInt(rec.UnitsSold),
		formatFloat(rec.Revenue),
		rec.SaleDateString(),
		string(rec.DateResolutionRule),
		string(rec.SubmissionStatus),
		rec.RepKey,
		rec.DupKey,
		strconv.FormatBool(rec.IsDuplicate),
		string(rec.ParseStatus),
	}
}

// FactRow renders a daily fact.
func FactRow(f model.DailySalesFact) []string {
	return []string{
		f.SaleDateString(),
		f.Region,
		f.Store,
		f.RepKey,
		strconv.Itoa(f.UnitsSold),
		strconv.FormatFloat(f.Revenue, 'f', -1, 64),
		strconv.Itoa(f.Submissions),
		string(f.SubmissionStatus),
		string(f.ParseStatus),
	}
}

// QualityRows renders the report as (metric, value) rows.
func QualityRows(r model.DataQualityReport) [][]string {
	metrics := r.Metrics()
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{m.Name, strconv.Itoa(m.Value)})
	}
	return rows
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
