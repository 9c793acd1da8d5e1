package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return LoadWithProfile("")
}

// LoadWithProfile reads configuration from the environment and then applies
// the match profile at path, if path is non-empty.
func LoadWithProfile(path string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), os.Getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if path != "" {
		p, err := ReadProfile(path)
		if err != nil {
			return nil, fmt.Errorf("config profile: %w", err)
		}
		p.Apply(&cfg.Match)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Defaults returns the configuration built from the default tags alone,
// ignoring the environment. Used by tests and by the web form preview.
func Defaults() *Config {
	cfg := &Config{}
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), func(string) string { return "" }); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// loadStruct recursively populates struct fields using lookup for each env name.
func loadStruct(v reflect.Value, lookup func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := lookup(envName)
		if value == "" && envAlt != "" {
			value = lookup(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Match validation
	if strings.TrimSpace(c.Match.JoinKeyField) == "" {
		errs = append(errs, "QC_JOIN_KEY_FIELD is required")
	}
	if len(c.Match.ComparedFields) == 0 {
		errs = append(errs, "QC_COMPARED_FIELDS must list at least one field")
	}
	for _, f := range c.Match.ComparedFields {
		if strings.EqualFold(f, c.Match.JoinKeyField) {
			errs = append(errs, fmt.Sprintf("QC_COMPARED_FIELDS must not contain the join key field %q", f))
		}
	}
	if dup := firstDuplicate(c.Match.ComparedFields); dup != "" {
		errs = append(errs, fmt.Sprintf("QC_COMPARED_FIELDS lists %q more than once", dup))
	}

	// Input validation
	if len([]rune(c.Input.CSVDelimiter)) != 1 {
		errs = append(errs, fmt.Sprintf("QC_CSV_DELIMITER (%q) must be a single character", c.Input.CSVDelimiter))
	}
	if _, err := htmlindex.Get(c.Input.FallbackEncoding); err != nil {
		errs = append(errs, fmt.Sprintf("QC_CSV_FALLBACK_ENCODING (%q) is not a known encoding", c.Input.FallbackEncoding))
	}
	if c.Input.MaxFileSize <= 0 {
		errs = append(errs, "QC_MAX_FILE_SIZE must be positive")
	}

	// Report validation
	if c.Report.SheetName == "" {
		errs = append(errs, "QC_REPORT_SHEET is required")
	}
	if c.Report.NotesColumn == "" {
		errs = append(errs, "QC_REPORT_NOTES_COLUMN is required")
	}
	if c.Report.PrimaryPrefix == c.Report.LayerPrefix {
		errs = append(errs, "QC_REPORT_PRIMARY_PREFIX and QC_REPORT_LAYER_PREFIX must differ")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.WorkDir == "" {
		errs = append(errs, "QC_WORK_DIR is required")
	}

	// Run validation
	if c.Run.MaxConcurrent <= 0 {
		errs = append(errs, "RUN_MAX_CONCURRENT must be positive")
	}
	if c.Run.MaxWaitTime <= 0 {
		errs = append(errs, "RUN_MAX_WAIT_TIME must be positive")
	}
	if c.Run.Timeout <= 0 {
		errs = append(errs, "RUN_TIMEOUT must be positive")
	}
	if c.Run.HistorySize <= 0 {
		errs = append(errs, "RUN_HISTORY_SIZE must be positive")
	}

	// Database validation (optional)
	if c.Database.URL != "" && c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}
	if c.Logging.File != "" && c.Logging.FileMaxSizeMB <= 0 {
		errs = append(errs, "LOG_FILE_MAX_SIZE_MB must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// firstDuplicate returns the first name that appears twice (case-insensitive).
func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		k := strings.ToLower(strings.TrimSpace(n))
		if seen[k] {
			return n
		}
		seen[k] = true
	}
	return ""
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Match: {JoinKey: %q, Compared: %q, CaseSensitive: %v}, ",
		c.Match.JoinKeyField, c.Match.ComparedFields, c.Match.CaseSensitive))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	if c.Database.URL != "" {
		b.WriteString("Database: {URL: [MASKED]}, ")
	} else {
		b.WriteString("Database: {URL: none}, ")
	}
	b.WriteString(fmt.Sprintf("Run: {MaxConcurrent: %d, Timeout: %s}, ",
		c.Run.MaxConcurrent, c.Run.Timeout))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
