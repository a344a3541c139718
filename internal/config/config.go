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

// Execution modes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
	ModeTest        = "test"
)

const (
	// MinTokenLength rejects obviously truncated API tokens before the
	// first upstream call ever fails.
	MinTokenLength = 10

	minPort = 1000
	maxPort = 65535

	// DefaultTimeoutSeconds bounds each upstream call.
	DefaultTimeoutSeconds = 15
)

// Config holds the environment-sourced configuration, validated at
// startup. Missing required configuration is fatal; the process does
// not start serving.
type Config struct {
	Mode          string
	Port          int
	APIToken      string
	ServerName    string
	ServerVersion string
	LogLevel      slog.Level
	Timeout       time.Duration
}

// Load reads configuration from a .env file (if present) and the
// process environment, then validates it.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	cfg := &Config{
		Mode:          getEnv("TODOBRIDGE_MODE", ModeDevelopment),
		APIToken:      os.Getenv("TODOIST_API_TOKEN"),
		ServerName:    getEnv("SERVER_NAME", "todobridge"),
		ServerVersion: getEnv("SERVER_VERSION", "dev"),
	}

	port, err := getIntEnv("PORT", 3000)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	timeoutSeconds, err := getIntEnv("TODOIST_TIMEOUT_SECONDS", DefaultTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeDevelopment, ModeProduction, ModeTest:
	default:
		return fmt.Errorf("invalid TODOBRIDGE_MODE %q (expected development, production or test)", c.Mode)
	}

	if c.Port < minPort || c.Port > maxPort {
		return fmt.Errorf("invalid PORT %d (expected %d-%d)", c.Port, minPort, maxPort)
	}

	if c.APIToken == "" {
		return fmt.Errorf("TODOIST_API_TOKEN is required")
	}
	if len(c.APIToken) < MinTokenLength {
		return fmt.Errorf("TODOIST_API_TOKEN is too short (minimum %d characters)", MinTokenLength)
	}

	if c.Timeout < time.Second || c.Timeout > 60*time.Second {
		return fmt.Errorf("invalid TODOIST_TIMEOUT_SECONDS %d (expected 1-60)", int(c.Timeout.Seconds()))
	}

	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (expected debug, info, warn or error)", value)
	}
}
