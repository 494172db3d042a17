package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// Artifact is one output written by a sink.
type Artifact struct {
	Sink     string
	Location string
}

// RenderRunSummary lists what a finished run produced.
func RenderRunSummary(result *model.RunResult, artifacts []Artifact) string {
	var b strings.Builder

	writeRow(&b, "Run", result.ID)
	writeRow(&b, "Source", result.Source)
	writeRow(&b, "Submissions", fmt.Sprint(len(result.Records)))
	writeRow(&b, "Daily facts", fmt.Sprint(len(result.Facts)))
	writeRow(&b, "Duplicates flagged", fmt.Sprint(result.Quality.DuplicatesFlagged))
	writeRow(&b, "Rows missing a value", fmt.Sprint(result.Quality.RowsMissingAny()))
	writeRow(&b, "Time taken", result.Duration().Round(time.Millisecond).String())

	if len(artifacts) > 0 {
		b.WriteString("\n" + BoldStyle.Render(FolderIcon+" Outputs") + "\n")
		for _, a := range artifacts {
			fmt.Fprintf(&b, "  %s %s %s\n", SuccessStyle.Render(SuccessIcon), SubtleStyle.Render("["+a.Sink+"]"), a.Location)
		}
	}

	return RenderBox("Run Complete", strings.TrimRight(b.String(), "\n"))
}

// RenderQualityReport shows the data-quality metrics of a run. Non-zero
// problem counts are highlighted.
func RenderQualityReport(run *model.RunSummary, report model.DataQualityReport) string {
	var b strings.Builder

	if run != nil {
		writeRow(&b, "Run", run.ID)
		writeRow(&b, "Started", run.StartedAt.Format(model.TimestampLayout))
		writeRow(&b, "Daily facts", fmt.Sprint(run.FactRows))
		b.WriteString("\n")
	}

	for _, m := range report.Metrics() {
		value := fmt.Sprint(m.Value)
		if m.Value > 0 && isProblemMetric(m.Name) {
			value = WarningStyle.Render(value)
		}
		writeRow(&b, m.Name, value)
	}

	return RenderBox(ChartIcon+" Data Quality", strings.TrimRight(b.String(), "\n"))
}

func isProblemMetric(name string) bool {
	switch name {
	case model.MetricDuplicatesFlagged, model.MetricMissingUnitsRows,
		model.MetricMissingRevenueRows, model.MetricMissingBothRows, model.MetricLateRows:
		return true
	}
	return false
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label) + value + "\n")
}
