package config

// Application constants
const (
	AppName    = "datapulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. DATAPULSE_LOGGING_LEVEL
	EnvPrefix = "DATAPULSE"

	// Default file locations (relative to the working directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/datapulse.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Archive ingestion
	DefaultMaxLineBytes = 1 << 20 // 1MB
)

// Price data columns
const (
	ColumnDate     = "Date"
	ColumnOpen     = "Open"
	ColumnHigh     = "High"
	ColumnLow      = "Low"
	ColumnClose    = "Close"
	ColumnAdjClose = "Adj Close"
	ColumnVolume   = "Volume"
	ColumnSymbol   = "symbol"
)

// Log record fields
const (
	FieldAPIMethod = "api_method"
	FieldLatencyMS = "latency_ms"
)

// Invariant names accepted in PricesConfig.Invariants
const (
	InvariantHighLow           = "high_low"
	InvariantOHLCBounds        = "ohlc_bounds"
	InvariantNonNegativeVolume = "non_negative_volume"
)

// Sort orders accepted by the aggregator configuration
const (
	SortByVariability = "variability"
	SortByMean        = "mean"
)

// MissingTokens are the cell texts read as missing when loading tables.
var MissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultDateLayouts are tried in order when coercing text to dates.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}
