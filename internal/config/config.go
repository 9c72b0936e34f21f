package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the gateway needs. It is built once at startup and
// passed to constructors explicitly.
type Config struct {
	Port string

	ClusterEndpoint string
	SocialEndpoint  string
	SearchEndpoint  string

	RedditDatasetID string
	QuoraDatasetID  string

	TriggerTimeout   time.Duration
	TriggerAuthToken string

	SigningSecret string

	OpenAIKey   string
	OpenAIModel string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	DashboardName string
	LogLevel      slog.Level
}

// Load reads a .env file if present and builds a Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8089"),
		ClusterEndpoint:  getEnv("KMEANS_PERFORMER_ENDPOINT", ""),
		SocialEndpoint:   getEnv("SOCIAL_API_BASE_URL", ""),
		SearchEndpoint:   getEnv("SERP_CLOUD_FUNCTION_URL", ""),
		RedditDatasetID:  getEnv("REDDIT_DATASET_ID", "gd_lvz8ah06191smkebj4"),
		QuoraDatasetID:   getEnv("QUORA_DATASET_ID", "gd_lvz1rbj81afv3m6n5y"),
		TriggerAuthToken: getEnv("TRIGGER_AUTH_TOKEN", ""),
		SigningSecret:    getEnv("PANEL_SIGNING_SECRET", ""),
		OpenAIKey:        getEnv("OPENAI_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		DashboardName:    getEnv("DASHBOARD_NAME", "Dynamic Topic Insights Dashboard"),
	}

	var err error
	if cfg.TriggerTimeout, err = time.ParseDuration(getEnv("TRIGGER_TIMEOUT", "90s")); err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_TIMEOUT: %w", err)
	}
	if cfg.TriggerTimeout <= 0 {
		return nil, fmt.Errorf("invalid TRIGGER_TIMEOUT: must be positive")
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "6")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.RateLimitPerMinute < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: must be at least 1")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// DatasetID returns the scraper dataset bound to a platform.
func (c *Config) DatasetID(platform string) (string, bool) {
	switch strings.ToLower(platform) {
	case "reddit":
		return c.RedditDatasetID, c.RedditDatasetID != ""
	case "quora":
		return c.QuoraDatasetID, c.QuoraDatasetID != ""
	default:
		return "", false
	}
}

// AuthEnabled reports whether operator tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.SigningSecret != ""
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
