// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the process.
type Config struct {
	Environment  string
	IsProduction bool

	// Server
	Host string
	Port int

	// Storage
	DBPath string

	// Estimation gateway
	GatewayURL     string
	GatewayAPIKey  string
	Model          string
	GatewayTimeout time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("MACROLOG_ENV", "development"),
		Host:          getEnv("MACROLOG_HOST", "0.0.0.0"),
		DBPath:        getEnv("MACROLOG_DB_PATH", "./macro-log.db"),
		GatewayURL:    getEnv("GATEWAY_URL", "http://mcp-compose-http-proxy:9876"),
		GatewayAPIKey: getEnv("GATEWAY_API_KEY", ""),
		Model:         getEnv("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet"),
	}
	cfg.IsProduction = cfg.Environment == "production"

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("MACROLOG_PORT", "8011")); err != nil {
		return nil, fmt.Errorf("invalid MACROLOG_PORT: %w", err)
	}
	secs, err := strconv.Atoi(getEnv("GATEWAY_TIMEOUT_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT_SECONDS: %w", err)
	}
	cfg.GatewayTimeout = time.Duration(secs) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("MACROLOG_DB_PATH must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
