// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package config

import (
	"fmt"
	"time"
)

// Storage drivers accepted by database.driver.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Event bus backends accepted by eventbus.backend.
const (
	BusMemory = "memory"
	BusNATS   = "nats"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	EventBus  EventBusConfig  `koanf:"eventbus"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps the POST /api/track request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and locates the storage backend.
type DatabaseConfig struct {
	// Driver is duckdb, sqlite or badger.
	Driver string `koanf:"driver"`

	// Path is a file path for duckdb/sqlite or a directory for badger.
	// ":memory:" selects an in-memory database for every driver.
	Path string `koanf:"path"`

	// MaxMemory is passed to DuckDB's memory_limit setting.
	MaxMemory string `koanf:"max_memory"`
}

// CacheConfig controls the analytics query cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// EventBusConfig controls post-ingest fan-out of accepted events.
type EventBusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	Topic   string `koanf:"topic"`

	NATSURL      string `koanf:"nats_url"`
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// Circuit breaker around Publish.
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`
}

// RateLimitConfig covers both the global per-IP limiter and the optional
// per-site token bucket on ingestion.
type RateLimitConfig struct {
	Disabled bool          `koanf:"disabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`

	// PerSiteRPS of 0 turns the per-site limiter off.
	PerSiteRPS   float64 `koanf:"per_site_rps"`
	PerSiteBurst int     `koanf:"per_site_burst"`
}

// WebSocketConfig controls the live event feed.
type WebSocketConfig struct {
	Enabled        bool     `koanf:"enabled"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LoggingConfig is translated into logging.Config in main.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
