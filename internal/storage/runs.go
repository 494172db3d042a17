package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/model"
)

// SaveRun stores a run with its enriched submissions, daily facts and quality
// metrics in a single transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result *model.RunResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(result); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at, finished_at, raw_rows, fact_rows)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.ID, result.Source, result.StartedAt.UTC(), result.FinishedAt.UTC(),
		len(result.Records), len(result.Facts))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", result.ID, err)
	}

	if err := saveSubmissionsTx(ctx, tx, result.ID, result.Records); err != nil {
		return err
	}
	if err := saveFactsTx(ctx, tx, result.ID, result.Facts); err != nil {
		return err
	}
	if err := saveQualityTx(ctx, tx, result.ID, result.Quality); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", result.ID, err)
	}

	slog.Debug("Saved run",
		"run_id", result.ID,
		"submissions", len(result.Records),
		"facts", len(result.Facts))
	return nil
}

func saveSubmissionsTx(ctx context.Context, tx *sql.Tx, runID string, records []model.EnrichedSubmission) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submissions (
			run_id, row_num, message_id, message_timestamp, sales_date_claimed,
			rep_id, rep_name, store, region, raw_text,
			units_sold, revenue, sale_date, date_resolution_rule,
			submission_status, parse_status, rep_key, dup_key, is_duplicate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			runID, i,
			rec.MessageID,
			nullTime(rec.MessageTimestamp),
			nullTime(rec.SalesDateClaimed),
			rec.RepID, rec.RepName, rec.Store, rec.Region, rec.RawText,
			nullInt(rec.UnitsSold),
			nullFloat(rec.Revenue),
			nullDate(rec.SaleDate),
			string(rec.DateResolutionRule),
			string(rec.SubmissionStatus),
			string(rec.ParseStatus),
			rec.RepKey,
			rec.DupKey,
			rec.IsDuplicate,
		)
		if err != nil {
			return fmt.Errorf("failed to save submission %d: %w", i, err)
		}
	}
	return nil
}

func saveFactsTx(ctx context.Context, tx *sql.Tx, runID string, facts []model.DailySalesFact) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_sales_facts (
			run_id, row_num, sale_date, region, store, rep_key,
			units_sold, revenue, submissions, submission_status, parse_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range facts {
		_, err := stmt.ExecContext(ctx,
			runID, i,
			nullDate(f.SaleDate),
			f.Region, f.Store, f.RepKey,
			f.UnitsSold, f.Revenue, f.Submissions,
			string(f.SubmissionStatus), string(f.ParseStatus),
		)
		if err != nil {
			return fmt.Errorf("failed to save fact %d: %w", i, err)
		}
	}
	return nil
}

func saveQualityTx(ctx context.Context, tx *sql.Tx, runID string, report model.DataQualityReport) error {
	for i, m := range report.Metrics() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quality_metrics (run_id, position, metric, value) VALUES (?, ?, ?, ?)
		`, runID, i, m.Name, m.Value)
		if err != nil {
			return fmt.Errorf("failed to save metric %s: %w", m.Name, err)
		}
	}
	return nil
}

const runColumns = `id, source, started_at, finished_at, raw_rows, fact_rows`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunSummary, error) {
	var run model.RunSummary
	if err := row.Scan(&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.RawRows, &run.FactRows); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetLatestRun returns the most recently started run.
func (s *SQLiteStorage) GetLatestRun(ctx context.Context) (*model.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no runs recorded", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// GetRun returns the run with the given ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetQualityReport returns the stored data-quality report of a run.
func (s *SQLiteStorage) GetQualityReport(ctx context.Context, runID string) (*model.DataQualityReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, value FROM quality_metrics WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quality metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []model.QualityMetric
	for rows.Next() {
		var m model.QualityMetric
		if err := rows.Scan(&m.Name, &m.Value); err != nil {
			return nil, fmt.Errorf("failed to scan quality metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: quality report for run %s", common.ErrNotFound, runID)
	}

	report := model.QualityReportFromMetrics(metrics)
	return &report, nil
}

// GetFacts returns the daily fact rows of a run in their stored order.
func (s *SQLiteStorage) GetFacts(ctx context.Context, runID string) ([]model.DailySalesFact, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_date, region, store, rep_key, units_sold, revenue,
		       submissions, submission_status, parse_status
		FROM daily_sales_facts
		WHERE run_id = ?
		ORDER BY row_num
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var facts []model.DailySalesFact
	for rows.Next() {
		var (
			f                  model.DailySalesFact
			saleDate           sql.NullString
			submissionStatus   string
			parseStatus        string
			region, store, rep sql.NullString
		)
		if err := rows.Scan(&saleDate, &region, &store, &rep, &f.UnitsSold, &f.Revenue,
			&f.Submissions, &submissionStatus, &parseStatus); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		if f.SaleDate, err = parseNullDate(saleDate); err != nil {
			return nil, err
		}
		f.Region, f.Store, f.RepKey = region.String, store.String, rep.String
		f.SubmissionStatus = model.SubmissionStatus(submissionStatus)
		f.ParseStatus = model.ParseStatus(parseStatus)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := time.Parse(model.DateLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", s.String, err)
	}
	return &d, nil
}
