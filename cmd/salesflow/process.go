package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/salesflow/internal/cli"
	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/config"
	"github.com/Veraticus/salesflow/internal/engine"
	"github.com/Veraticus/salesflow/internal/extract"
	"github.com/Veraticus/salesflow/internal/metrics"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
	"github.com/Veraticus/salesflow/internal/sheets"
	"github.com/Veraticus/salesflow/internal/sink"
	"github.com/Veraticus/salesflow/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Turn the raw submissions export into daily facts",
		Long: `Read the full submissions export, enrich every message and write the
interim table, the daily fact table and the data-quality report.

The export must exist before anything is processed. Every run recomputes all
outputs from scratch.`,
		RunE: runProcess,
	}

	cmd.Flags().String("root", ".", "project root that relative paths resolve against")
	cmd.Flags().StringP("input", "i", config.DefaultInputPath, "submissions export (.csv or .xlsx)")
	cmd.Flags().String("sheet", "", "worksheet to read from an .xlsx export (default: first sheet)")
	cmd.Flags().StringSlice("sinks", config.DefaultSinks, "outputs to write (csv, xlsx, sqlite, sheets, metrics)")
	cmd.Flags().String("workbook", sink.DefaultWorkbookPath, "workbook path for the xlsx sink")
	cmd.Flags().String("metrics-textfile", "", "Prometheus textfile path for the metrics sink")
	cmd.Flags().String("timezone", "UTC", "zone for timestamps without an offset")
	cmd.Flags().StringSlice("currency-markers", extract.DefaultCurrencyMarkers, "currency symbols that may precede an amount")
	cmd.Flags().Int("workers", 0, "parallel enrichment workers (default: one per CPU)")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	_ = viper.BindPFlag("root", cmd.Flags().Lookup("root"))
	_ = viper.BindPFlag("input.path", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("input.sheet", cmd.Flags().Lookup("sheet"))
	_ = viper.BindPFlag("output.sinks", cmd.Flags().Lookup("sinks"))
	_ = viper.BindPFlag("output.workbook", cmd.Flags().Lookup("workbook"))
	_ = viper.BindPFlag("metrics.textfile", cmd.Flags().Lookup("metrics-textfile"))
	_ = viper.BindPFlag("processing.timezone", cmd.Flags().Lookup("timezone"))
	_ = viper.BindPFlag("processing.currency_markers", cmd.Flags().Lookup("currency-markers"))
	_ = viper.BindPFlag("processing.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	result, artifacts, err := process(ctx, cfg, cmd.ErrOrStderr(), !noProgress)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRunSummary(result, artifacts))
	return err
}

// process runs one batch with the writers cfg enables and reports the files
// they produced.
func process(ctx context.Context, cfg *config.Pipeline, progressOut io.Writer, showProgress bool) (*model.RunResult, []cli.Artifact, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	src, err := source.Open(cfg.InputPath, source.Options{Location: loc, Sheet: cfg.Sheet})
	if err != nil {
		return nil, nil, err
	}

	amount, err := extract.NewAmountExtractor(cfg.CurrencyMarkers...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	opts := engine.ProcessorOptions{
		Units:   extract.DefaultQuantityExtractor(),
		Amount:  amount,
		Workers: cfg.Workers,
	}
	if showProgress {
		progress := cli.NewProgressSource(src, progressOut, "Processing submissions...")
		opts.Progress = progress.Progress
		src = progress
	}

	writers, closeWriters, err := buildWriters(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeWriters()

	slog.Info("Starting run", "input", cfg.InputPath, "sinks", cfg.Sinks, "workers", cfg.Workers)

	result, err := engine.NewPipeline(src, engine.NewProcessor(opts), writers...).Run(ctx)
	if err != nil {
		return nil, nil, err
	}

	return result, collectArtifacts(writers), nil
}

// buildWriters creates the enabled sinks in a fixed order. The returned
// function releases anything they hold open.
func buildWriters(ctx context.Context, cfg *config.Pipeline) ([]service.ResultWriter, func(), error) {
	var (
		writers []service.ResultWriter
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Warn("Failed to close writer", "error", err)
			}
		}
	}

	if cfg.Enabled(config.SinkCSV) {
		writers = append(writers, &sink.CSVWriter{
			InterimPath: cfg.InterimPath,
			FactPath:    cfg.FactPath,
			QualityPath: cfg.QualityPath,
		})
	}
	if cfg.Enabled(config.SinkXLSX) {
		writers = append(writers, sink.NewXLSXWriter(cfg.WorkbookPath))
	}
	if cfg.Enabled(config.SinkSQLite) {
		store, err := initStorage(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		closers = append(closers, store)
		writers = append(writers, store)
	}
	if cfg.Enabled(config.SinkSheets) {
		sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			closeAll()
			return nil, nil, common.NewUserError(
				"Google Sheets is enabled but not configured. Run: salesflow auth sheets",
				fmt.Errorf("%w: %w", common.ErrMissingConfig, err))
		}
		w, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create sheets writer: %w", err)
		}
		writers = append(writers, w)
	}
	if cfg.Enabled(config.SinkMetrics) {
		writers = append(writers, metrics.NewTextfileWriter(metrics.NewRegistry(), cfg.MetricsTextfile))
	}

	if len(writers) == 0 {
		return nil, nil, fmt.Errorf("%w: no outputs enabled", common.ErrInvalidConfig)
	}
	return writers, closeAll, nil
}

type artifactLister interface {
	Artifacts() []string
}

func collectArtifacts(writers []service.ResultWriter) []cli.Artifact {
	var artifacts []cli.Artifact
	for _, w := range writers {
		lister, ok := w.(artifactLister)
		if !ok {
			continue
		}
		for _, loc := range lister.Artifacts() {
			artifacts = append(artifacts, cli.Artifact{Sink: w.Name(), Location: loc})
		}
	}
	return artifacts
}
