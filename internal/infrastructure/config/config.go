// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Storage
	DatabasePath string

	// Relay server (desktop side)
	PreferredPort int
	MetricsPort   string

	// Relay client (scanner side)
	DesktopURL           string
	MaxReconnectAttempts int
	BackoffStep          time.Duration
	MaxBackoff           time.Duration
	ProbeTimeout         time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		DatabasePath: getEnv("DATABASE_PATH", "embrel.db"),

		PreferredPort: getEnvAsInt("RELAY_PORT", 8080),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),

		DesktopURL:           getEnv("DESKTOP_URL", ""),
		MaxReconnectAttempts: getEnvAsInt("RELAY_MAX_RECONNECT_ATTEMPTS", 3),
		BackoffStep:          time.Duration(getEnvAsInt("RELAY_BACKOFF_STEP_MS", 5000)) * time.Millisecond,
		MaxBackoff:           time.Duration(getEnvAsInt("RELAY_MAX_BACKOFF_MS", 30000)) * time.Millisecond,
		ProbeTimeout:         time.Duration(getEnvAsInt("RELAY_PROBE_TIMEOUT_MS", 5000)) * time.Millisecond,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
