// Package config loads service configuration from an optional YAML file and
// the environment, and wires up logging.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
// Environment variables override YAML values.
type Config struct {
	// ListenAddr is the HTTP listen address. Env: FLIGHTFLOW_ADDR.
	ListenAddr string `yaml:"listen_addr"`

	// OpenAIKey authenticates against the OpenAI API. Env: OPENAI_API_KEY.
	OpenAIKey string `yaml:"-"`

	// OpenAIModel is the chat model name. Env: OPENAI_MODEL.
	OpenAIModel string `yaml:"openai_model"`

	// OpenAIBaseURL overrides the API endpoint, e.g. for a proxy.
	// Env: OPENAI_BASE_URL.
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// DatabaseURL is the Postgres DSN for the ticket record store.
	// Empty selects the in-memory store. Env: DATABASE_URL.
	DatabaseURL string `yaml:"database_url"`

	// SessionDBPath is the SQLite file for session persistence.
	// Empty selects the in-memory store. Env: SESSION_DB_PATH.
	SessionDBPath string `yaml:"session_db_path"`

	// SessionTTL is how long an idle session survives. Env: SESSION_TTL.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// MaxSteps bounds internal stage transitions per turn. Env: MAX_STEPS.
	MaxSteps int `yaml:"max_steps"`

	// LogLevel is one of debug, info, warn, error. Env: LOG_LEVEL.
	LogLevel string `yaml:"log_level"`

	// LogFile receives JSON logs in addition to stderr. Env: LOG_FILE.
	LogFile string `yaml:"log_file"`

	// MetricsEnabled turns on OpenTelemetry metrics. Env: METRICS_ENABLED.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// TracingEnabled turns on OpenTelemetry tracing. Env: TRACING_ENABLED.
	TracingEnabled bool `yaml:"tracing_enabled"`
}

// defaults returns the baseline configuration.
func defaults() Config {
	return Config{
		ListenAddr:  ":8080",
		OpenAIModel: "gpt-4o-mini",
		SessionTTL:  24 * time.Hour,
		MaxSteps:    20,
		LogLevel:    "info",
	}
}

// Load builds the configuration: defaults, then the YAML file (if yamlPath is
// non-empty), then a .env file (if present), then environment variables.
func Load(yamlPath string) (*Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg.ListenAddr = envStr("FLIGHTFLOW_ADDR", cfg.ListenAddr)
	cfg.OpenAIKey = envStr("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.OpenAIModel = envStr("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIBaseURL = envStr("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.DatabaseURL = envStr("DATABASE_URL", cfg.DatabaseURL)
	cfg.SessionDBPath = envStr("SESSION_DB_PATH", cfg.SessionDBPath)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envStr("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.MaxSteps, err = envInt("MAX_STEPS", cfg.MaxSteps); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = envBool("METRICS_ENABLED", cfg.MetricsEnabled); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = envBool("TRACING_ENABLED", cfg.TracingEnabled); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
