// Package sheets publishes run results to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/salesflow/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  "Daily Sales",
		TimeZone:         "Africa/Johannesburg",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setFromEnv(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setFromEnv(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setFromEnv(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setFromEnv(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setFromEnv(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	setFromEnv(&c.SpreadsheetName, "GOOGLE_SHEETS_SPREADSHEET_NAME")
}

func setFromEnv(field *string, key string) {
	if *field != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

// Configuration problems reported by Validate.
var (
	ErrNoAuth        = errors.New("no Google credentials configured: set a service account or an OAuth2 client with refresh token")
	ErrAmbiguousAuth = errors.New("both a service account and OAuth2 credentials are configured")
	ErrNoSpreadsheet = errors.New("a spreadsheet ID or name is required")
)

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []error

	switch {
	case c.hasOAuth() && c.ServiceAccountPath != "":
		problems = append(problems, ErrAmbiguousAuth)
	case !c.hasOAuth() && c.ServiceAccountPath == "":
		problems = append(problems, ErrNoAuth)
	}
	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		problems = append(problems, ErrNoSpreadsheet)
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			problems = append(problems, fmt.Errorf("time zone %q: %w", c.TimeZone, err))
		}
	}
	if c.BatchSize < 1 {
		problems = append(problems, fmt.Errorf("batch size %d is not positive", c.BatchSize))
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		problems = append(problems, fmt.Errorf("retry attempts (%d) and delay (%s) must not be negative", c.RetryAttempts, c.RetryDelay))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(problems...))
}
