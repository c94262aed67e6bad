package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string
	DatabaseURL      string
	LogLevel         string
	Environment      string
	HealthAddr       string
	TickCronSpec     string        // minute-resolution polling spec
	TickTimeout      time.Duration // upper bound on one tick's external calls
	FetchTimeout     time.Duration // timing service HTTP timeout
	CleanupKeepCount int           // recent notification outputs kept by cleanup
	HistoryScanLimit int           // hard cap on cleanup history lookback
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.HealthAddr = os.Getenv("HEALTH_ADDR")
	if cfg.HealthAddr == "" {
		cfg.HealthAddr = ":8080"
	}

	cfg.TickCronSpec = os.Getenv("TICK_CRON_SPEC")
	if cfg.TickCronSpec == "" {
		cfg.TickCronSpec = "* * * * *" // every minute
	}

	var err error
	cfg.TickTimeout, err = durationFromEnv("TICK_TIMEOUT", 50*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = durationFromEnv("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.CleanupKeepCount, err = intFromEnv("CLEANUP_KEEP_COUNT", 5)
	if err != nil {
		return nil, err
	}

	cfg.HistoryScanLimit, err = intFromEnv("HISTORY_SCAN_LIMIT", 200)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
