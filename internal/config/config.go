package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Database
	SQLiteDBPath string

	// LLM backend
	OllamaBaseURL       string
	OllamaModel         string
	LLMExtractTimeout   time.Duration
	LLMNarrativeTimeout time.Duration

	// Audio and image ingestion (optional)
	TranscriberURL string
	TextReaderURL  string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	SheetsExportEnabled      bool
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		SQLiteDBPath:       getEnv("SQLITE_DB_PATH", "./data/spendlog.db"),

		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "llama3.1"),
		LLMExtractTimeout:   getEnvDuration("LLM_EXTRACT_TIMEOUT", 60*time.Second),
		LLMNarrativeTimeout: getEnvDuration("LLM_NARRATIVE_TIMEOUT", 120*time.Second),

		TranscriberURL: getEnv("TRANSCRIBER_URL", ""),
		TextReaderURL:  getEnv("TEXT_READER_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendlog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_created"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
	}

	cfg.SheetsExportEnabled = cfg.GoogleSpreadsheetID != ""

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.OllamaBaseURL == "" {
		errors = append(errors, "Ollama base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.OllamaBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid Ollama base URL '%s': %v", c.OllamaBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid Ollama base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.OllamaModel == "" {
		errors = append(errors, "Ollama model name cannot be empty")
	}

	if c.LLMExtractTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid LLM extract timeout %v: must be at least 1 second", c.LLMExtractTimeout))
	}
	if c.LLMNarrativeTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid LLM narrative timeout %v: must be at least 1 second", c.LLMNarrativeTimeout))
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

	if c.SheetsExportEnabled {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is configured")
		}

		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}

		if hasFile {
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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
