package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the relay.
type Config struct {
	TelegramToken string
	AllowedUserID string

	BackendWSURL   string
	UpdateInterval time.Duration
	DisplayLimit   int

	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
}

// Load reads a .env file when present, then environment variables, applying
// safe defaults. Missing credentials are a hard error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		AllowedUserID:    strings.TrimSpace(os.Getenv("ALLOWED_USER_ID")),
		BackendWSURL:     envOrDefault("BACKEND_WS_URL", "ws://localhost:8083/ws"),
		UpdateInterval:   time.Second,
		DisplayLimit:     4000,
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8084"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "taskrelay"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.UpdateInterval, err = durationFromEnv("APP_UPDATE_INTERVAL", cfg.UpdateInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.DisplayLimit, err = intFromEnv("APP_DISPLAY_LIMIT", cfg.DisplayLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.UpdateInterval <= 0 {
		return Config{}, fmt.Errorf("APP_UPDATE_INTERVAL must be positive")
	}
	if cfg.DisplayLimit < 100 {
		return Config{}, fmt.Errorf("APP_DISPLAY_LIMIT must be at least 100")
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

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
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
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
