package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the API server.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// LLMProvider selects the dialogue backend: "anthropic", "openai",
	// or "none" for a degraded dev mode with placeholder responses.
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	ModelName       string `env:"MODEL_NAME"`

	// RedisURL enables the Redis store and image cache. Empty means
	// in-memory only.
	RedisURL string `env:"REDIS_URL"`

	CasesDir string `env:"CASES_DIR" envDefault:"./data/cases"`

	// EnableImages turns on scene illustration via the image provider.
	EnableImages bool `env:"ENABLE_IMAGES" envDefault:"false"`
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps the configured level string onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
