package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/extract"
	"github.com/Veraticus/salesflow/internal/sink"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Sink names accepted in output.sinks.
const (
	SinkCSV     = "csv"
	SinkXLSX    = "xlsx"
	SinkSQLite  = "sqlite"
	SinkSheets  = "sheets"
	SinkMetrics = "metrics"
)

// DefaultInputPath is where the raw export is expected, relative to the project root.
const DefaultInputPath = "data/raw/whatsapp_submissions_raw.csv"

// DefaultDatabasePath holds the run history.
const DefaultDatabasePath = "$HOME/.local/share/salesflow/salesflow.db"

// DefaultSinks are written by every run unless configured otherwise.
var DefaultSinks = []string{SinkCSV, SinkSQLite}

// Pipeline is the resolved configuration of a processing run.
type Pipeline struct {
	Root            string `validate:"required"`
	InputPath       string `validate:"required"`
	Sheet           string
	InterimPath     string   `validate:"required"`
	FactPath        string   `validate:"required"`
	QualityPath     string   `validate:"required"`
	WorkbookPath    string   `validate:"required_if=XLSX true"`
	DatabasePath    string   `validate:"required_if=SQLite true"`
	MetricsTextfile string   `validate:"required_if=Metrics true"`
	TimeZone        string   `validate:"required,timezone"`
	CurrencyMarkers []string `validate:"required,min=1,dive,required"`
	Sinks           []string `validate:"dive,oneof=csv xlsx sqlite sheets metrics"`
	Workers         int      `validate:"gte=0,lte=1024"`

	XLSX    bool `validate:"-"`
	SQLite  bool `validate:"-"`
	Metrics bool `validate:"-"`
}

// SetDefaults registers the pipeline defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("input.path", DefaultInputPath)
	v.SetDefault("output.interim", sink.DefaultInterimPath)
	v.SetDefault("output.facts", sink.DefaultFactPath)
	v.SetDefault("output.quality", sink.DefaultQualityPath)
	v.SetDefault("output.workbook", sink.DefaultWorkbookPath)
	v.SetDefault("output.sinks", DefaultSinks)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("processing.timezone", "UTC")
	v.SetDefault("processing.workers", runtime.NumCPU())
	v.SetDefault("processing.currency_markers", extract.DefaultCurrencyMarkers)
}

// Load resolves and validates the pipeline configuration held by v.
// Relative input and output paths are taken from the project root; the
// database path is not.
func Load(v *viper.Viper) (*Pipeline, error) {
	SetDefaults(v)

	root := ExpandPath(v.GetString("root"))
	p := &Pipeline{
		Root:            root,
		InputPath:       underRoot(root, v.GetString("input.path")),
		Sheet:           v.GetString("input.sheet"),
		InterimPath:     underRoot(root, v.GetString("output.interim")),
		FactPath:        underRoot(root, v.GetString("output.facts")),
		QualityPath:     underRoot(root, v.GetString("output.quality")),
		WorkbookPath:    underRoot(root, v.GetString("output.workbook")),
		DatabasePath:    ExpandPath(v.GetString("database.path")),
		MetricsTextfile: underRoot(root, v.GetString("metrics.textfile")),
		TimeZone:        v.GetString("processing.timezone"),
		CurrencyMarkers: normalizeList(v.GetStringSlice("processing.currency_markers")),
		Sinks:           normalizeList(v.GetStringSlice("output.sinks")),
		Workers:         v.GetInt("processing.workers"),
	}
	p.XLSX = p.Enabled(SinkXLSX)
	p.SQLite = p.Enabled(SinkSQLite)
	p.Metrics = p.Enabled(SinkMetrics)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its field rules.
func (p *Pipeline) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Enabled reports whether the named sink is configured.
func (p *Pipeline) Enabled(name string) bool {
	for _, s := range p.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// Location loads the configured time zone for naive timestamps.
func (p *Pipeline) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", common.ErrInvalidConfig, p.TimeZone, err)
	}
	return loc, nil
}

func underRoot(root, path string) string {
	path = ExpandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// normalizeList lower-cases, trims and drops empty entries. Viper hands
// environment values over as one comma separated string.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
