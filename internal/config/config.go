package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Storage drivers.
const (
	StorageRedis = "redis"
	StorageBolt  = "bolt"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Session storage
	StorageDriver string // "redis" or "bolt"
	RedisURL      string
	BoltPath      string
	SessionTTL    time.Duration

	// World definitions
	DataDir string

	// Narrator
	LLMProvider     string // "anthropic", "ollama", "gemini" or "mock"
	ModelName       string
	AnthropicAPIKey string
	GeminiAPIKey    string
	OllamaURL       string

	// When true, narration is run through the content filter.
	FamilyFriendly bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageRedis)),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		BoltPath:      getEnv("BOLT_PATH", "./worldengine.db"),

		DataDir: getEnv("DATA_DIR", "./data"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "mock")),
		ModelName:       getEnv("MODEL_NAME", ""),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),

		FamilyFriendly: strings.EqualFold(getEnv("CONTENT_RATING", ""), "pg"),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	switch cfg.StorageDriver {
	case StorageRedis, StorageBolt:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (supported: redis, bolt)", cfg.StorageDriver)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
