// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package config

import (
	"fmt"
	"strings"
)

// Validate checks cross-field constraints after all layers are merged.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateEventBus(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB, DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("DB_DRIVER must be one of duckdb, sqlite, badger, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

func (c *Config) validateEventBus() error {
	if !c.EventBus.Enabled {
		return nil
	}
	if c.EventBus.Topic == "" {
		return fmt.Errorf("EVENTBUS_TOPIC is required when EVENTBUS_ENABLED=true")
	}
	switch c.EventBus.Backend {
	case BusMemory:
		return nil
	case BusNATS:
		if !c.EventBus.Embedded && c.EventBus.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTBUS_BACKEND=nats and NATS_EMBEDDED=false")
		}
		if c.EventBus.Embedded && (c.EventBus.EmbeddedPort < 1 || c.EventBus.EmbeddedPort > 65535) {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535, got %d", c.EventBus.EmbeddedPort)
		}
		return nil
	default:
		return fmt.Errorf("EVENTBUS_BACKEND must be memory or nats, got %q", c.EventBus.Backend)
	}
}

func (c *Config) validateRateLimit() error {
	if !c.RateLimit.Disabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
		}
	}
	if c.RateLimit.PerSiteRPS < 0 {
		return fmt.Errorf("SITE_RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimit.PerSiteRPS > 0 && c.RateLimit.PerSiteBurst < 1 {
		return fmt.Errorf("SITE_RATE_LIMIT_BURST must be at least 1 when SITE_RATE_LIMIT_RPS is set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
