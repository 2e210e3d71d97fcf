package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the echo service.
// Environment variables are parsed from the ECHO_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Auth service (external collaborator; validates bearer sessions)
	AuthBaseURL string `envconfig:"AUTH_BASE_URL" default:"http://localhost:3000"`

	// Media upload service (external collaborator; stores fragment images)
	MediaUploadURL    string `envconfig:"MEDIA_UPLOAD_URL" default:""`
	MediaUploadPreset string `envconfig:"MEDIA_UPLOAD_PRESET" default:"echo-fragments"`

	// Generative language provider
	GenAIBaseURL string `envconfig:"GENAI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GenAIAPIKey  string `envconfig:"GENAI_API_KEY" default:""`

	// Reference timezone for day bucketing; every day boundary in the system
	// is computed in this zone.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// Nightly sweep wall-clock hour (0-23) in the reference timezone.
	SweepHour int `envconfig:"SWEEP_HOUR" default:"23"`

	// Echo list page size
	EchoPageSize int `envconfig:"ECHO_PAGE_SIZE" default:"10"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates derived settings and resolves the timezone.
func (c *Config) ResolveDefaults() error {
	if c.SweepHour < 0 || c.SweepHour > 23 {
		return fmt.Errorf("ECHO_SWEEP_HOUR must be in [0,23], got %d", c.SweepHour)
	}
	if c.EchoPageSize <= 0 {
		return fmt.Errorf("ECHO_ECHO_PAGE_SIZE must be positive, got %d", c.EchoPageSize)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unsupported ECHO_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the parsed reference timezone. ResolveDefaults must have
// succeeded before calling.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with ECHO_
// Example: ECHO_HTTP_PORT, ECHO_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ECHO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("timezone", cfg.Timezone).
		Int("sweep_hour", cfg.SweepHour).
		Str("auth_base_url", cfg.AuthBaseURL).
		Str("genai_base_url", cfg.GenAIBaseURL).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		AuthBaseURL:               "http://localhost:3000",
		GenAIBaseURL:              "http://localhost:11434",
		Timezone:                  "UTC",
		SweepHour:                 23,
		EchoPageSize:              10,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
