// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"zero body cap", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "MAX_BODY_BYTES"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"empty path", func(c *Config) { c.Database.Path = "  " }, "DB_PATH"},
		{"bus without topic", func(c *Config) { c.EventBus.Topic = "" }, "EVENTBUS_TOPIC"},
		{"bus disabled skips topic", func(c *Config) {
			c.EventBus.Enabled = false
			c.EventBus.Topic = ""
		}, ""},
		{"unknown backend", func(c *Config) { c.EventBus.Backend = "kafka" }, "EVENTBUS_BACKEND"},
		{"nats without url", func(c *Config) {
			c.EventBus.Backend = BusNATS
			c.EventBus.NATSURL = ""
		}, "NATS_URL"},
		{"embedded nats bad port", func(c *Config) {
			c.EventBus.Backend = BusNATS
			c.EventBus.Embedded = true
			c.EventBus.EmbeddedPort = 70000
		}, "NATS_EMBEDDED_PORT"},
		{"rate limit zero requests", func(c *Config) { c.RateLimit.Requests = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled ignores requests", func(c *Config) {
			c.RateLimit.Disabled = true
			c.RateLimit.Requests = 0
		}, ""},
		{"negative site rps", func(c *Config) { c.RateLimit.PerSiteRPS = -1 }, "SITE_RATE_LIMIT_RPS"},
		{"site rps without burst", func(c *Config) {
			c.RateLimit.PerSiteRPS = 5
			c.RateLimit.PerSiteBurst = 0
		}, "SITE_RATE_LIMIT_BURST"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
