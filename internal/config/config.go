package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultMaxBodySize = 1 << 20

type Config struct {
	// Server
	Port              string
	TrustProxyHeaders bool
	MaxBodySize       int64

	// Webhook authentication
	WebhookSecretKey   string
	CheckClientIP      bool
	TroubleshootingURL string

	// Database (optional, enables the delivery audit log)
	DatabaseURL string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		MaxBodySize:        getEnvInt64("MAX_BODY_SIZE", DefaultMaxBodySize),
		WebhookSecretKey:   os.Getenv("WEBHOOK_SECRET_KEY"),
		CheckClientIP:      getEnvBool("CHECK_CLIENT_IP", true),
		TroubleshootingURL: getEnv("TROUBLESHOOTING_URL", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
	}

	if cfg.WebhookSecretKey == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET_KEY is required")
	}

	if cfg.MaxBodySize <= 0 {
		return nil, fmt.Errorf("invalid MAX_BODY_SIZE: must be positive, got %d", cfg.MaxBodySize)
	}

	return cfg, nil
}

// PersistenceEnabled reports whether deliveries are recorded in the database.
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
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
