package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the Kyra backend.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string

	DatabaseURL string

	PageFetchTimeout time.Duration
	MemoryWindow     int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		// Render-style deployments inject PORT; 10000 is its default.
		BindAddr:          ":" + envOrDefault("PORT", "10000"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "kyra"),
		CompletionAPIKey:  envTrimmed("COMPLETION_API_KEY"),
		CompletionBaseURL: envOrDefault("COMPLETION_BASE_URL", "https://openrouter.ai/api/v1"),
		CompletionModel:   envOrDefault("COMPLETION_MODEL", "openai/gpt-4o-mini"),
		DatabaseURL:       envTrimmed("DATABASE_URL"),
		ShutdownTimeout:   15 * time.Second,
		PageFetchTimeout:  10 * time.Second,
		MemoryWindow:      8,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.PageFetchTimeout, err = durationFromEnv("WEBPAGE_FETCH_TIMEOUT", cfg.PageFetchTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryWindow, err = intFromEnv("MEMORY_WINDOW", cfg.MemoryWindow)
	if err != nil {
		return Config{}, err
	}

	if cfg.MemoryWindow <= 0 {
		return Config{}, fmt.Errorf("MEMORY_WINDOW must be positive")
	}
	if cfg.PageFetchTimeout < time.Second {
		return Config{}, fmt.Errorf("WEBPAGE_FETCH_TIMEOUT must be at least 1s")
	}
	if strings.TrimSpace(cfg.CompletionModel) == "" {
		return Config{}, fmt.Errorf("COMPLETION_MODEL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
