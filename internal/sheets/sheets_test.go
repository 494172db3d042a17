package sheets

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/engine"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
	"github.com/Veraticus/salesflow/internal/testutil"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.ServiceAccountPath = "/path/to/key.json"
		return c
	}

	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
		errMsg  string
	}{
		{name: "service account", mutate: func(*Config) {}},
		{
			name: "oauth",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
			},
		},
		{
			name:    "partial oauth",
			mutate:  func(c *Config) { c.ServiceAccountPath, c.ClientID, c.RefreshToken = "", "id", "token" },
			wantErr: ErrNoAuth,
		},
		{
			name:    "both auth methods",
			mutate:  func(c *Config) { c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token" },
			wantErr: ErrAmbiguousAuth,
		},
		{
			name:    "no spreadsheet",
			mutate:  func(c *Config) { c.SpreadsheetName = "" },
			wantErr: ErrNoSpreadsheet,
		},
		{
			name:   "bad time zone",
			mutate: func(c *Config) { c.TimeZone = "Mars/Olympus" },
			errMsg: "Mars/Olympus",
		},
		{
			name:   "zero batch",
			mutate: func(c *Config) { c.BatchSize = 0 },
			errMsg: "batch size 0 is not positive",
		},
		{
			name:   "negative retries",
			mutate: func(c *Config) { c.RetryAttempts = -1 },
			errMsg: "must not be negative",
		},
		{
			name:   "negative delay",
			mutate: func(c *Config) { c.RetryDelay = -time.Second },
			errMsg: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil && tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrInvalidConfig)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		c := Config{}
		err := c.Validate()
		assert.ErrorIs(t, err, ErrNoAuth)
		assert.ErrorIs(t, err, ErrNoSpreadsheet)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-sheet")

	c := Config{SpreadsheetID: "configured"}
	c.LoadFromEnv()

	assert.Equal(t, "env-id", c.ClientID)
	assert.Equal(t, "configured", c.SpreadsheetID, "configured values win over the environment")
}

func sampleResult(t *testing.T) *model.RunResult {
	t.Helper()
	records := engine.NewProcessor(engine.ProcessorOptions{Workers: 1}).Process(testutil.SampleBatch(t))
	facts, quality := engine.Aggregate(records)
	return &model.RunResult{
		ID:         "run-1",
		StartedAt:  time.Date(2024, 1, 12, 6, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 1, 12, 6, 0, 1, 0, time.UTC),
		Records:    records,
		Facts:      facts,
		Quality:    quality,
	}
}

func TestNewTabData(t *testing.T) {
	data := NewTabData(sampleResult(t))

	require.Len(t, data.Facts, 2)
	assert.Equal(t, "42201", data.Facts[0].Revenue.String())
	assert.Equal(t, "43051", data.Totals.Revenue.String())
	assert.Equal(t, 14, data.Totals.UnitsSold)
	assert.Equal(t, 3, data.Totals.Submissions)
	assert.Len(t, data.Quality, len(model.QualityMetricNames))
}

func TestTabValues(t *testing.T) {
	data := NewTabData(sampleResult(t))

	subs := submissionValues(data)
	require.Len(t, subs, 6)
	assert.Equal(t, "message_id", subs[0][0])
	assert.Equal(t, 7, subs[1][8])
	assert.Equal(t, 27401.0, subs[1][9])
	assert.Equal(t, true, subs[2][15])
	assert.Equal(t, "", subs[5][8], "absent units stay empty")

	facts := factValues(data)
	require.Len(t, facts, 5)
	assert.Equal(t, []any{"Total", "", "", "", 14, 43051.0, 3}, facts[4])

	quality := qualityValues(data)
	assert.Equal(t, []any{"raw_rows", 5}, quality[1])
	assert.Equal(t, []any{"run_id", "run-1"}, quality[10])
	assert.Equal(t, []any{"generated_at", "2024-01-12T06:00:01Z"}, quality[11])
}

type fakeAPI struct {
	updateErrs []error
	tabs       map[string]int64
	updates    map[string][][]any
	cleared    []string
	created    int
	batches    int
	mu         sync.Mutex
}

func newFakeAPI(tabs ...string) *fakeAPI {
	f := &fakeAPI{tabs: map[string]int64{}, updates: map[string][][]any{}}
	for i, name := range tabs {
		f.tabs[name] = int64(i)
	}
	return f
}

func (f *fakeAPI) spreadsheet() *sheets.Spreadsheet {
	s := &sheets.Spreadsheet{SpreadsheetId: "sheet-1"}
	for name, id := range f.tabs {
		s.Sheets = append(s.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: name, SheetId: id}})
	}
	return s
}

func (f *fakeAPI) Get(_ context.Context, id string) (*sheets.Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != "sheet-1" {
		return nil, &googleapi.Error{Code: http.StatusNotFound, Message: "not found"}
	}
	return f.spreadsheet(), nil
}

func (f *fakeAPI) Create(_ context.Context, s *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	for i, sh := range s.Sheets {
		f.tabs[sh.Properties.Title] = int64(i)
	}
	return f.spreadsheet(), nil
}

func (f *fakeAPI) BatchUpdate(_ context.Context, _ string, req *sheets.BatchUpdateSpreadsheetRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	for _, r := range req.Requests {
		if r.AddSheet != nil {
			f.tabs[r.AddSheet.Properties.Title] = int64(100 + len(f.tabs))
		}
	}
	return nil
}

func (f *fakeAPI) ClearValues(_ context.Context, _ string, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, rng)
	return nil
}

func (f *fakeAPI) UpdateValues(_ context.Context, _ string, rng string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		return err
	}
	f.updates[rng] = values
	return nil
}

func testConfig() Config {
	c := DefaultConfig()
	c.ServiceAccountPath = "/path/to/key.json"
	c.RetryDelay = time.Millisecond
	return c
}

func TestWriter_CreatesSpreadsheet(t *testing.T) {
	api := newFakeAPI()
	w := newWriter(api, testConfig(), nil)

	assert.Equal(t, "sheets", w.Name())
	assert.Empty(t, w.Artifacts())
	require.NoError(t, w.Write(context.Background(), sampleResult(t)))
	require.Len(t, w.Artifacts(), 1)
	assert.Contains(t, w.Artifacts()[0], "docs.google.com/spreadsheets/d/")

	assert.Equal(t, 1, api.created)
	assert.Equal(t, []string{"'Submissions'!A:Z", "'Daily Facts'!A:Z", "'Data Quality'!A:Z"}, api.cleared)
	assert.Len(t, api.updates["'Submissions'!A1"], 6)
	assert.Len(t, api.updates["'Daily Facts'!A1"], 5)
	assert.Len(t, api.updates["'Data Quality'!A1"], 12)

	// A second run reuses the spreadsheet created by the first.
	require.NoError(t, w.Write(context.Background(), sampleResult(t)))
	assert.Equal(t, 1, api.created)
}

func TestWriter_AddsMissingTabs(t *testing.T) {
	api := newFakeAPI("Submissions")
	cfg := testConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.EnableFormatting = false

	require.NoError(t, newWriter(api, cfg, nil).Write(context.Background(), sampleResult(t)))

	assert.Equal(t, 0, api.created)
	assert.Equal(t, 1, api.batches, "one batch adds both missing tabs")
	assert.Contains(t, api.tabs, TabFacts)
	assert.Contains(t, api.tabs, TabQuality)
}

func TestWriter_Batches(t *testing.T) {
	api := newFakeAPI()
	cfg := testConfig()
	cfg.BatchSize = 4

	require.NoError(t, newWriter(api, cfg, nil).Write(context.Background(), sampleResult(t)))

	assert.Len(t, api.updates["'Submissions'!A1"], 4)
	assert.Len(t, api.updates["'Submissions'!A5"], 2)
}

func TestWriter_RetriesRateLimit(t *testing.T) {
	api := newFakeAPI()
	api.updateErrs = []error{&googleapi.Error{Code: http.StatusTooManyRequests}}
	w := newWriter(api, testConfig(), nil)
	// Rate limits back off for MaxDelay.
	require.NoError(t, w.writeData(context.Background(), "sheet-1", TabQuality, [][]any{{"a"}}, fastRetry()))
	assert.Len(t, api.updates["'Data Quality'!A1"], 1)
}

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
}

func TestWriter_PermanentErrorFails(t *testing.T) {
	api := newFakeAPI()
	api.updateErrs = []error{&googleapi.Error{Code: http.StatusForbidden, Message: "denied"}}

	err := newWriter(api, testConfig(), nil).Write(context.Background(), sampleResult(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestWriter_MissingSpreadsheet(t *testing.T) {
	cfg := testConfig()
	cfg.SpreadsheetID = "unknown"

	err := newWriter(newFakeAPI(), cfg, nil).Write(context.Background(), sampleResult(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access spreadsheet unknown")
}

func TestClassifyError(t *testing.T) {
	plain := errors.New("boom")
	assert.Nil(t, classifyError(nil))
	assert.Equal(t, plain, classifyError(plain))

	assert.ErrorIs(t, classifyError(&googleapi.Error{Code: http.StatusTooManyRequests}), common.ErrRateLimit)

	var retryable *common.RetryableError
	require.ErrorAs(t, classifyError(&googleapi.Error{Code: http.StatusBadGateway}), &retryable)
	assert.True(t, retryable.Retryable)

	require.ErrorAs(t, classifyError(&googleapi.Error{Code: http.StatusBadRequest}), &retryable)
	assert.False(t, retryable.Retryable)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sheets-token.json")
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, token))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "access", loaded.AccessToken)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
