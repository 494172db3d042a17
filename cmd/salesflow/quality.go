package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/salesflow/internal/cli"
	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func qualityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Show the data-quality report of a past run",
		Long: `Show the data-quality report stored by the sqlite output.

Without --run the most recent run is shown. Use --history to list recent runs.`,
		RunE: runQuality,
	}

	cmd.Flags().String("run", "", "run ID to show (default: latest)")
	cmd.Flags().Int("history", 0, "list this many recent runs instead")
	cmd.Flags().Bool("facts", false, "also list the run's daily fact rows")

	return cmd
}

func runQuality(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx, viper.GetString("database.path"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	runID, _ := cmd.Flags().GetString("run")
	history, _ := cmd.Flags().GetInt("history")

	if history > 0 {
		return showHistory(cmd, store, history)
	}
	showFacts, _ := cmd.Flags().GetBool("facts")
	return showQuality(cmd, store, runID, showFacts)
}

func showQuality(cmd *cobra.Command, store service.Storage, runID string, showFacts bool) error {
	ctx := cmd.Context()

	var (
		run *model.RunSummary
		err error
	)
	if runID != "" {
		run, err = store.GetRun(ctx, runID)
	} else {
		run, err = store.GetLatestRun(ctx)
	}
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError("No matching run recorded. Run: salesflow process", err)
	}
	if err != nil {
		return err
	}

	report, err := store.GetQualityReport(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load quality report: %w", err)
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, cli.RenderQualityReport(run, *report)); err != nil {
		return err
	}
	if !showFacts {
		return nil
	}

	facts, err := store.GetFacts(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load facts: %w", err)
	}
	for _, f := range facts {
		if err := writeFactLine(out, f); err != nil {
			return err
		}
	}
	return nil
}

func showHistory(cmd *cobra.Command, store service.Storage, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, err = fmt.Fprintln(out, cli.FormatInfo("No runs recorded yet"))
		return err
	}

	if _, err := fmt.Fprintln(out, cli.FormatTitle("Recent runs")); err != nil {
		return err
	}
	for _, r := range runs {
		if err := writeRunLine(out, r); err != nil {
			return err
		}
	}
	return nil
}

func writeRunLine(w io.Writer, r model.RunSummary) error {
	_, err := fmt.Fprintf(w, "%s  %s  %d submissions  %d facts  %s\n",
		r.ID,
		r.StartedAt.Format(model.TimestampLayout),
		r.RawRows,
		r.FactRows,
		cli.SubtleStyle.Render(r.Source))
	return err
}

func writeFactLine(w io.Writer, f model.DailySalesFact) error {
	date := f.SaleDateString()
	if date == "" {
		date = "(no date)"
	}
	_, err := fmt.Fprintf(w, "%-10s  %-14s  %-14s  %-10s  %6d  %12.2f  %d  %s  %s\n",
		date, f.Region, f.Store, f.RepKey,
		f.UnitsSold, f.Revenue, f.Submissions, f.SubmissionStatus, f.ParseStatus)
	return err
}
