package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLen = 16

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Auth: HS256 bearer tokens issued by the external auth service.
	JWTSecret string
	JWTIssuer string

	// Database
	SQLiteDBPath string

	// AMQP; an empty URL disables messaging.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Recurring engine
	RecurringProcessorInterval time.Duration
	// MetricsPort serves the worker's /metrics; "0" disables it.
	MetricsPort string

	// Dashboard cache
	CacheTTL  time.Duration
	CacheSize int

	// Logging
	LogLevel string
	LogJSON  bool

	// Google Sheets export sink; an empty spreadsheet ID disables it.
	GoogleSpreadsheetID        string
	GoogleSheetName            string
	GoogleServiceAccountJSON   string
	GoogleServiceAccountFile   string
	GoogleApplicationCredsFile string
}

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/saldo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "saldo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "recurring_process_due"),

		RecurringProcessorInterval: getEnvDuration("RECURRING_PROCESSOR_INTERVAL", time.Hour),
		MetricsPort:                getEnv("METRICS_PORT", "9091"),

		CacheTTL:  getEnvDuration("DASHBOARD_CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("DASHBOARD_CACHE_SIZE", 256),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		GoogleSpreadsheetID:        getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:            getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON:   getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile:   getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleApplicationCredsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}
}

// AMQPEnabled reports whether a broker is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// MetricsEnabled reports whether the worker exposes its metrics listener.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsPort != "" && c.MetricsPort != "0"
}

// SheetsEnabled reports whether the spreadsheet export sink is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration shared by every command and returns
// all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MetricsEnabled() {
		if port, err := strconv.Atoi(c.MetricsPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid metrics port '%s': must be a number between 1 and 65535, or 0 to disable", c.MetricsPort))
		}
	}

	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RecurringProcessorInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 second", c.RecurringProcessorInterval))
	} else if c.RecurringProcessorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at most 24 hours", c.RecurringProcessorInterval))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache size %d: must be at least 1", c.CacheSize))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.SheetsEnabled() {
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != "" || c.GoogleApplicationCredsFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("configuration validation failed:\n- JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
