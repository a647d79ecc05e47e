package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
// Values come from defaults, then the optional YAML file named by PP_CONFIG_FILE,
// then environment variables, each layer overriding the previous one.
type Config struct {
	Path                  string
	ScanInterval          time.Duration
	LivePrices            bool
	IncludeDetails        bool
	Language              string
	QuoteURL              string
	QuoteTimeout          time.Duration
	QuoteBatchSize        int
	DatabaseURL           string
	HTTPPort              string
	AdminAPIKey           string
	XLSXExportPath        string
	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string
	LogLevel              string
	LogFormat             string
}

// fileConfig mirrors Config for the YAML file. Pointers distinguish unset from zero.
type fileConfig struct {
	Path           string `yaml:"path"`
	ScanInterval   string `yaml:"scan_interval"`
	LivePrices     *bool  `yaml:"live_prices"`
	IncludeDetails *bool  `yaml:"include_details"`
	Language       string `yaml:"language"`
	Quotes         struct {
		URL       string `yaml:"url"`
		Timeout   string `yaml:"timeout"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"quotes"`
	DatabaseURL string `yaml:"database_url"`
	HTTPPort    string `yaml:"http_port"`
	Export      struct {
		XLSXPath            string `yaml:"xlsx_path"`
		SheetsSpreadsheetID string `yaml:"sheets_spreadsheet_id"`
	} `yaml:"export"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Path:           "/config/pp/holdings.csv",
		ScanInterval:   5 * time.Minute,
		LivePrices:     false,
		IncludeDetails: true,
		Language:       "de",
		QuoteURL:       "https://query1.finance.yahoo.com",
		QuoteTimeout:   15 * time.Second,
		QuoteBatchSize: 40,
		HTTPPort:       "8080",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads the optional config file and then environment variables.
// Only an unreadable or malformed config file is an error; invalid env values
// are logged and ignored.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("PP_CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fc.apply(cfg)
	}

	return applyEnv(cfg), nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg Config) Config {
	cfg.Path = orDefault(fc.Path, cfg.Path)
	cfg.ScanInterval = durationOrDefault("scan_interval", fc.ScanInterval, cfg.ScanInterval)
	if fc.LivePrices != nil {
		cfg.LivePrices = *fc.LivePrices
	}
	if fc.IncludeDetails != nil {
		cfg.IncludeDetails = *fc.IncludeDetails
	}
	cfg.Language = orDefault(fc.Language, cfg.Language)
	cfg.QuoteURL = orDefault(fc.Quotes.URL, cfg.QuoteURL)
	cfg.QuoteTimeout = durationOrDefault("quotes.timeout", fc.Quotes.Timeout, cfg.QuoteTimeout)
	if fc.Quotes.BatchSize > 0 {
		cfg.QuoteBatchSize = fc.Quotes.BatchSize
	}
	cfg.DatabaseURL = orDefault(fc.DatabaseURL, cfg.DatabaseURL)
	cfg.HTTPPort = orDefault(fc.HTTPPort, cfg.HTTPPort)
	cfg.XLSXExportPath = orDefault(fc.Export.XLSXPath, cfg.XLSXExportPath)
	cfg.SheetsSpreadsheetID = orDefault(fc.Export.SheetsSpreadsheetID, cfg.SheetsSpreadsheetID)
	cfg.LogLevel = orDefault(fc.Log.Level, cfg.LogLevel)
	cfg.LogFormat = orDefault(fc.Log.Format, cfg.LogFormat)
	return cfg
}

func applyEnv(cfg Config) Config {
	cfg.Path = envOrDefault("PP_PATH", cfg.Path)
	cfg.ScanInterval = envOrDefaultDuration("PP_SCAN_INTERVAL", cfg.ScanInterval)
	cfg.LivePrices = envOrDefaultBool("PP_LIVE_PRICES", cfg.LivePrices)
	cfg.IncludeDetails = envOrDefaultBool("PP_INCLUDE_DETAILS", cfg.IncludeDetails)
	cfg.Language = envOrDefault("PP_LANGUAGE", cfg.Language)
	cfg.QuoteURL = envOrDefault("QUOTE_URL", cfg.QuoteURL)
	cfg.QuoteTimeout = envOrDefaultDuration("QUOTE_TIMEOUT", cfg.QuoteTimeout)
	cfg.QuoteBatchSize = envOrDefaultInt("QUOTE_BATCH_SIZE", cfg.QuoteBatchSize)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.HTTPPort = envOrDefault("HTTP_PORT", cfg.HTTPPort)
	cfg.AdminAPIKey = envOrDefault("ADMIN_API_KEY", cfg.AdminAPIKey)
	cfg.XLSXExportPath = envOrDefault("XLSX_EXPORT_PATH", cfg.XLSXExportPath)
	cfg.SheetsSpreadsheetID = envOrDefault("SHEETS_SPREADSHEET_ID", cfg.SheetsSpreadsheetID)
	cfg.GoogleCredentialsJSON = envOrDefault("GOOGLE_CREDENTIALS_JSON", cfg.GoogleCredentialsJSON)
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("LOG_FORMAT", cfg.LogFormat))
	return cfg
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, defaultVal string) string {
	if v != "" {
		return v
	}
	return defaultVal
}

func durationOrDefault(key, v string, defaultVal time.Duration) time.Duration {
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in config file, using default", "key", key, "value", v, "default", defaultVal)
		return defaultVal
	}
	return d
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
