package config

import (
	"github.com/Veraticus/salesflow/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig builds the Google Sheets sink configuration. Values come
// from viper (config file or SALESFLOW_SHEETS_* variables) first, then from
// GOOGLE_SHEETS_* variables for anything still unset.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	setString(v, "sheets.service_account_path", &config.ServiceAccountPath)
	setString(v, "sheets.client_id", &config.ClientID)
	setString(v, "sheets.client_secret", &config.ClientSecret)
	setString(v, "sheets.refresh_token", &config.RefreshToken)
	setString(v, "sheets.spreadsheet_id", &config.SpreadsheetID)
	setString(v, "sheets.spreadsheet_name", &config.SpreadsheetName)
	setString(v, "sheets.timezone", &config.TimeZone)
	if n := v.GetInt("sheets.batch_size"); n > 0 {
		config.BatchSize = n
	}

	// The default name is only a fallback for the environment.
	if !v.IsSet("sheets.spreadsheet_name") {
		config.SpreadsheetName = ""
	}
	config.LoadFromEnv()
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = sheets.DefaultConfig().SpreadsheetName
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SheetsConfigured reports whether any Google Sheets credentials are present.
func SheetsConfigured(v *viper.Viper) bool {
	_, err := LoadSheetsConfig(v)
	return err == nil
}

func setString(v *viper.Viper, key string, field *string) {
	if s := v.GetString(key); s != "" {
		*field = s
	}
}
