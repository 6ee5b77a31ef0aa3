package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Prices    PricesConfig    `yaml:"prices" envconfig:"PRICES"`
	Logs      LogsConfig      `yaml:"logs" envconfig:"LOGS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// PricesConfig drives the tabular price cleaning chain and its summary
type PricesConfig struct {
	// RequiredColumns identify a price row; rows missing any of them are dropped
	RequiredColumns []string `yaml:"required_columns" envconfig:"REQUIRED_COLUMNS" validate:"required,min=1,dive,required"`
	// RequiredIfPresent are required only when the table carries the column
	RequiredIfPresent []string `yaml:"required_if_present" envconfig:"REQUIRED_IF_PRESENT"`
	// FillZeroColumns are quantity columns whose missing cells become zero
	FillZeroColumns []string `yaml:"fill_zero_columns" envconfig:"FILL_ZERO_COLUMNS"`
	DateColumns     []string `yaml:"date_columns" envconfig:"DATE_COLUMNS"`
	NumericColumns  []string `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS"`
	DateLayouts     []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS" validate:"required,min=1"`
	DedupKeys       []string `yaml:"dedup_keys" envconfig:"DEDUP_KEYS"`
	Invariants      []string `yaml:"invariants" envconfig:"INVARIANTS" validate:"dive,oneof=high_low ohlc_bounds non_negative_volume"`

	SymbolColumn  string `yaml:"symbol_column" envconfig:"SYMBOL_COLUMN" validate:"required"`
	DefaultSymbol string `yaml:"default_symbol" envconfig:"DEFAULT_SYMBOL"`
	ValueColumn   string `yaml:"value_column" envconfig:"VALUE_COLUMN" validate:"required"`
	SortBy        string `yaml:"sort_by" envconfig:"SORT_BY" validate:"oneof=variability mean"`

	// Sheet selects the worksheet for .xlsx inputs; empty means the first sheet
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
	// StrictQuotes rejects bare quotes in delimited input; offending rows are
	// skipped and counted instead of kept as literal text
	StrictQuotes bool `yaml:"strict_quotes" envconfig:"STRICT_QUOTES"`
}

// LogsConfig drives archive ingestion and the latency summary
type LogsConfig struct {
	// MemberPrefix restricts decoding to archive members whose base name starts with it
	MemberPrefix string   `yaml:"member_prefix" envconfig:"MEMBER_PREFIX"`
	GroupColumn  string   `yaml:"group_column" envconfig:"GROUP_COLUMN" validate:"required"`
	ValueColumn  string   `yaml:"value_column" envconfig:"VALUE_COLUMN" validate:"required"`
	DedupKeys    []string `yaml:"dedup_keys" envconfig:"DEDUP_KEYS"`
	MaxLineBytes int      `yaml:"max_line_bytes" envconfig:"MAX_LINE_BYTES" validate:"min=1024"`
	SortBy       string   `yaml:"sort_by" envconfig:"SORT_BY" validate:"oneof=variability mean"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration from defaults, then the YAML file at path (or
// the first config file found in the usual locations when path is empty), then
// DATAPULSE_* environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate normalizes the logging settings and checks every field constraint.
// Call it again after overriding values loaded by Load.
func (c *Config) Validate() error {
	// Always JSON
	c.Logging.Format = DefaultLogFormat
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	v := validator.New()
	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"datapulse.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Prices: PricesConfig{
			RequiredColumns:   []string{ColumnDate, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose},
			RequiredIfPresent: []string{ColumnAdjClose},
			FillZeroColumns:   []string{ColumnVolume},
			DateColumns:       []string{ColumnDate},
			NumericColumns:    []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnAdjClose, ColumnVolume},
			DateLayouts:       append([]string(nil), DefaultDateLayouts...),
			DedupKeys:         []string{ColumnDate},
			Invariants:        []string{InvariantHighLow},
			SymbolColumn:      ColumnSymbol,
			ValueColumn:       ColumnClose,
			SortBy:            SortByVariability,
		},
		Logs: LogsConfig{
			GroupColumn:  FieldAPIMethod,
			ValueColumn:  FieldLatencyMS,
			MaxLineBytes: DefaultMaxLineBytes,
			SortBy:       SortByVariability,
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: true,
			TraceExporter:  "none",
			Environment:    "development",
		},
	}
}
