// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sitepulse/config.yaml",
	"/etc/sitepulse/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    64 << 10,
		},
		Database: DatabaseConfig{
			Driver:    DriverDuckDB,
			Path:      "/data/sitepulse.duckdb",
			MaxMemory: "512MB",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		EventBus: EventBusConfig{
			Enabled:            true,
			Backend:            BusMemory,
			Topic:              "sitepulse.events",
			NATSURL:            "nats://127.0.0.1:4222",
			Embedded:           false,
			EmbeddedHost:       "127.0.0.1",
			EmbeddedPort:       4222,
			MaxReconnects:      -1,
			ReconnectWait:      2 * time.Second,
			BreakerMaxRequests: 1,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
			BreakerFailures:    5,
		},
		RateLimit: RateLimitConfig{
			Disabled:     false,
			Requests:     600,
			Window:       time.Minute,
			PerSiteRPS:   0,
			PerSiteBurst: 50,
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf builds the configuration from, in increasing precedence:
// struct defaults, an optional YAML file, then environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths lists keys that env vars supply as comma-separated strings.
var sliceConfigPaths = []string{
	"websocket.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat env var names (lowercased) to koanf keys. Anything
// not listed is ignored so unrelated process env never leaks into config.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"max_body_bytes":        "server.max_body_bytes",

	"db_driver":     "database.driver",
	"db_path":       "database.path",
	"db_max_memory": "database.max_memory",

	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",

	"eventbus_enabled": "eventbus.enabled",
	"eventbus_backend": "eventbus.backend",
	"eventbus_topic":   "eventbus.topic",

	"nats_url":            "eventbus.nats_url",
	"nats_embedded":       "eventbus.embedded",
	"nats_embedded_host":  "eventbus.embedded_host",
	"nats_embedded_port":  "eventbus.embedded_port",
	"nats_max_reconnects": "eventbus.max_reconnects",
	"nats_reconnect_wait": "eventbus.reconnect_wait",

	"breaker_max_requests": "eventbus.breaker_max_requests",
	"breaker_interval":     "eventbus.breaker_interval",
	"breaker_timeout":      "eventbus.breaker_timeout",
	"breaker_failures":     "eventbus.breaker_failures",

	"disable_rate_limit":    "ratelimit.disabled",
	"rate_limit_requests":   "ratelimit.requests",
	"rate_limit_window":     "ratelimit.window",
	"site_rate_limit_rps":   "ratelimit.per_site_rps",
	"site_rate_limit_burst": "ratelimit.per_site_burst",

	"websocket_enabled":         "websocket.enabled",
	"websocket_allowed_origins": "websocket.allowed_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
