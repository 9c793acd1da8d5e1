// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Match    MatchConfig
	Input    InputConfig
	Report   ReportConfig
	Server   ServerConfig
	Run      RunConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// MatchConfig controls how Complot and layer records are joined and compared.
type MatchConfig struct {
	// JoinKeyField is the column used to associate rows across sources.
	JoinKeyField string `env:"QC_JOIN_KEY_FIELD" default:"קישור לקובץ"`

	// ComparedFields are compared field by field for every matched pair.
	ComparedFields []string `env:"QC_COMPARED_FIELDS" default:"גוש,חלקה,מגרש,כתובת"`

	// PrimaryExtraFields are carried from the Complot source into the report
	// without being compared. Missing columns are tolerated.
	PrimaryExtraFields []string `env:"QC_PRIMARY_EXTRA_FIELDS" default:"דיסק,משלוח,ארגז,תיק בניין,מספר בקשה"`

	// LayerExtraFields are carried from the layer source into the report.
	LayerExtraFields []string `env:"QC_LAYER_EXTRA_FIELDS"`

	// NullTokens are cell values treated as "no value" (case-insensitive).
	// Empty and whitespace-only cells are always null.
	NullTokens []string `env:"QC_NULL_TOKENS" default:"<Null>,nan,NULL"`

	// CaseSensitive disables case folding in field comparison.
	CaseSensitive bool `env:"QC_CASE_SENSITIVE" default:"false"`

	// NumericFields are compared numerically when both sides parse as numbers.
	NumericFields []string `env:"QC_NUMERIC_FIELDS"`
}

// InputConfig holds settings for reading the source files.
type InputConfig struct {
	// CSVDelimiter is the field separator of the Complot export (default: ,)
	CSVDelimiter string `env:"QC_CSV_DELIMITER" default:","`

	// FallbackEncoding decodes CSV files that are neither UTF-8 nor UTF-16.
	FallbackEncoding string `env:"QC_CSV_FALLBACK_ENCODING" default:"windows-1255"`

	// MaxFileSize is the maximum accepted input size in bytes (default: 50MB)
	MaxFileSize int64 `env:"QC_MAX_FILE_SIZE" default:"52428800"`
}

// ReportConfig holds output layout settings.
type ReportConfig struct {
	// SheetName is the worksheet name of the generated report.
	SheetName string `env:"QC_REPORT_SHEET" default:"Sheet1"`

	// PrimaryPrefix precedes Complot column names in the report header.
	PrimaryPrefix string `env:"QC_REPORT_PRIMARY_PREFIX" default:"מהקומפלוט - \n"`

	// LayerPrefix precedes layer column names in the report header.
	LayerPrefix string `env:"QC_REPORT_LAYER_PREFIX" default:"מהשכבה - \n"`

	// LayerComparedSuffix follows compared layer column names.
	LayerComparedSuffix string `env:"QC_REPORT_LAYER_SUFFIX" default:"\nלפי בדיקה גאוגרפית"`

	// ComparePrefix precedes the boolean comparison columns.
	ComparePrefix string `env:"QC_REPORT_COMPARE_PREFIX" default:"השוואה - \n"`

	// NotesColumn is the header of the free-text notes column.
	NotesColumn string `env:"QC_REPORT_NOTES_COLUMN" default:"הערות"`

	// RightToLeft renders the sheet right-to-left (default: true)
	RightToLeft bool `env:"QC_REPORT_RTL" default:"true"`
}

// ServerConfig holds settings for the local web front-end.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// WorkDir receives uploaded inputs and generated reports, one directory per run.
	WorkDir string `env:"QC_WORK_DIR" default:"qualitycheck-runs"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For
	// headers are believed. Empty trusts no proxy.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// RunConfig holds run execution settings.
type RunConfig struct {
	// MaxConcurrent is the maximum number of parallel runs (default: 2)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single run (default: 5m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"5m"`

	// HistorySize is how many runs the in-memory history keeps (default: 50)
	HistorySize int `env:"RUN_HISTORY_SIZE" default:"50"`
}

// DatabaseConfig holds the optional run-history database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps history in memory.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File additionally writes logs to a rotating file when set.
	File string `env:"LOG_FILE"`

	// FileMaxSizeMB is the size at which the log file is rotated (default: 10)
	FileMaxSizeMB int `env:"LOG_FILE_MAX_SIZE_MB" default:"10"`

	// FileMaxBackups is the number of rotated files to keep (default: 3)
	FileMaxBackups int `env:"LOG_FILE_MAX_BACKUPS" default:"3"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
