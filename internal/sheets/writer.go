package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
	"github.com/Veraticus/salesflow/internal/sink"
)

// Writer publishes a run to a spreadsheet with one tab per output table.
type Writer struct {
	api    spreadsheetAPI
	logger *slog.Logger
	config Config
}

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&serviceAPI{srv: srv}, config, logger), nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{api: api, config: config, logger: logger}
}

// Name implements service.ResultWriter.
func (w *Writer) Name() string {
	return "sheets"
}

// Artifacts lists the spreadsheet URL once it is known.
func (w *Writer) Artifacts() []string {
	if w.config.SpreadsheetID == "" {
		return nil
	}
	return []string{"https://docs.google.com/spreadsheets/d/" + w.config.SpreadsheetID}
}

// Write implements service.ResultWriter.
func (w *Writer) Write(ctx context.Context, result *model.RunResult) error {
	data := NewTabData(result)
	w.logger.Info("starting sheets export",
		"run_id", data.RunID,
		"submissions", len(data.Submissions),
		"facts", len(data.Facts))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, err = w.getOrCreateSpreadsheet(ctx)
		return classifyError(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	var tabIDs map[string]int64
	err = common.WithRetry(ctx, func() error {
		var err error
		tabIDs, err = w.ensureTabs(ctx, spreadsheetID)
		return classifyError(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare tabs: %w", err)
	}

	tabs := []struct {
		name   string
		values [][]any
	}{
		{name: TabSubmissions, values: submissionValues(data)},
		{name: TabFacts, values: factValues(data)},
		{name: TabQuality, values: qualityValues(data)},
	}

	for _, tab := range tabs {
		err := common.WithRetry(ctx, func() error {
			return classifyError(w.api.ClearValues(ctx, spreadsheetID, quoteTab(tab.name)+"!A:Z"))
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", tab.name, err)
		}

		if err := w.writeData(ctx, spreadsheetID, tab.name, tab.values, retryOpts); err != nil {
			return fmt.Errorf("failed to write %s: %w", tab.name, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyError(w.api.BatchUpdate(ctx, spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: formattingRequests(tabIDs, len(data.Facts)),
			}))
		}, retryOpts)
		if err != nil {
			// Unformatted output is still usable.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"run_id", data.RunID)

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.api.Get(ctx, w.config.SpreadsheetID); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, name := range []string{TabSubmissions, TabFacts, TabQuality} {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: name},
		})
	}

	created, err := w.api.Create(ctx, spreadsheet)
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later runs write to the same spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureTabs adds any missing tab and returns the sheet ID of each tab.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	spreadsheet, err := w.api.Get(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, 3)
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	var requests []*sheets.Request
	for _, name := range []string{TabSubmissions, TabFacts, TabQuality} {
		if _, ok := ids[name]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		})
	}
	if len(requests) == 0 {
		return ids, nil
	}

	if err := w.api.BatchUpdate(ctx, spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}); err != nil {
		return nil, err
	}

	// Sheet IDs of new tabs are assigned by the server.
	spreadsheet, err = w.api.Get(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

// writeData writes values to a tab in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any, retryOpts service.RetryOptions) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		batch := values[i:end]
		rangeStr := fmt.Sprintf("%s!A%d", quoteTab(tab), i+1)
		err := common.WithRetry(ctx, func() error {
			return classifyError(w.api.UpdateValues(ctx, spreadsheetID, rangeStr, batch))
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func quoteTab(name string) string {
	return "'" + name + "'"
}

// classifyError marks rate limits and server errors as retryable and other API errors as permanent.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

func submissionValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Submissions)+1)
	values = append(values, header(sink.SubmissionHeader))

	for _, rec := range data.Submissions {
		row := make([]any, 0, len(sink.SubmissionHeader))
		for _, cell := range sink.SubmissionRow(rec) {
			row = append(row, cell)
		}
		// Numeric columns go in as numbers so the sheet can sum them.
		if rec.UnitsSold != nil {
			row[8] = *rec.UnitsSold
		}
		if rec.Revenue != nil {
			row[9] = *rec.Revenue
		}
		row[15] = rec.IsDuplicate
		values = append(values, row)
	}
	return values
}

func factValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Facts)+3)
	values = append(values, header(sink.FactHeader))

	for _, f := range data.Facts {
		values = append(values, []any{
			f.SaleDate,
			f.Region,
			f.Store,
			f.RepKey,
			f.UnitsSold,
			f.Revenue.InexactFloat64(),
			f.Submissions,
			f.SubmissionStatus,
			f.ParseStatus,
		})
	}

	values = append(values,
		[]any{},
		[]any{
			"Total", "", "", "",
			data.Totals.UnitsSold,
			data.Totals.Revenue.InexactFloat64(),
			data.Totals.Submissions,
		},
	)
	return values
}

func qualityValues(data TabData) [][]any {
	values := make([][]any, 0, len(data.Quality)+3)
	values = append(values, header(sink.QualityHeader))
	for _, m := range data.Quality {
		values = append(values, []any{m.Name, m.Value})
	}
	values = append(values,
		[]any{},
		[]any{"run_id", data.RunID},
		[]any{"generated_at", data.GeneratedAt.UTC().Format(time.RFC3339)},
	)
	return values
}

func header(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

// formattingRequests bolds and freezes every header row and formats the revenue column.
func formattingRequests(tabIDs map[string]int64, factRows int) []*sheets.Request {
	var requests []*sheets.Request

	for _, name := range []string{TabSubmissions, TabFacts, TabQuality} {
		id, ok := tabIDs[name]
		if !ok {
			continue
		}
		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       id,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
			&sheets.Request{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{
						SheetId:   id,
						Dimension: "COLUMNS",
					},
				},
			},
		)
	}

	if id, ok := tabIDs[TabFacts]; ok {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          id,
					StartRowIndex:    1,
					EndRowIndex:      int64(factRows + 3),
					StartColumnIndex: 5,
					EndColumnIndex:   6,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "R #,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	return requests
}
