// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/spendlog, cmd/spendlog-worker, and cmd/seed.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"spendlog/internal/config"
	"spendlog/internal/llm"
	"spendlog/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// InitLLMClients builds the two Ollama clients used by the pipeline.
// Extraction and narrative generation carry different timeouts, so each
// gets its own client against the same backend.
func InitLLMClients(cfg *config.Config) (extractClient, narrativeClient *llm.Client) {
	extractClient = llm.NewClient(llm.Config{
		BaseURL: cfg.OllamaBaseURL,
		Model:   cfg.OllamaModel,
		Timeout: cfg.LLMExtractTimeout,
	})
	narrativeClient = llm.NewClient(llm.Config{
		BaseURL: cfg.OllamaBaseURL,
		Model:   cfg.OllamaModel,
		Timeout: cfg.LLMNarrativeTimeout,
	})
	return extractClient, narrativeClient
}
