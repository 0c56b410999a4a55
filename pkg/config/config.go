// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting of the landing service
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Empty RedisAddr selects the in-process view store
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Empty TokenSecret generates a per-process secret at startup
	TokenSecret string `env:"LANDING_TOKEN_SECRET"`
	TokenIssuer string `env:"LANDING_TOKEN_ISSUER" envDefault:"landing-service"`

	ViewTTL       time.Duration `env:"LANDING_VIEW_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"LANDING_SWEEP_INTERVAL" envDefault:"1m"`

	OTelEndpoint string `env:"LANDING_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"LANDING_OTEL_ENABLED" envDefault:"true"`
}

// Load parses and validates the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.ViewTTL <= 0 {
		return fmt.Errorf("LANDING_VIEW_TTL must be positive, got %s", c.ViewTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("LANDING_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.TokenSecret != "" && len(c.TokenSecret) < 32 {
		return errors.New("LANDING_TOKEN_SECRET must be at least 32 bytes")
	}
	return nil
}

// UseRedis reports whether views are kept in Redis
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

// TracingEnabled reports whether OpenTelemetry export is configured
func (c *Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}
