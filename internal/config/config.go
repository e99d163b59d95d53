package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderMock      = "mock"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider      string
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OllamaURL        string
	ModelName        string
	SummaryModelName string
	LLMTimeout       time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		ModelName:        getEnv("MODEL_NAME", "gpt-5-nano"),
		SummaryModelName: os.Getenv("SUMMARY_MODEL_NAME"),
	}

	timeoutSeconds, err := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "120"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT_SECONDS: %q", getEnv("LLM_TIMEOUT_SECONDS", "120"))
	}
	cfg.LLMTimeout = time.Duration(timeoutSeconds) * time.Second

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is %q", ProviderOpenAI)
		}
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is %q", ProviderAnthropic)
		}
	case ProviderOllama, ProviderMock:
		// No credentials needed.
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER: %q", cfg.LLMProvider)
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
