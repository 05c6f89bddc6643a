// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/kvstore"
)

func TestRun_SetupFailureReleasesStore(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()

	bus := memoryBusConfig()
	bus.Backend = "kafka"
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverBadger, Path: dir},
		EventBus: *bus,
		Server:   config.ServerConfig{ShutdownTimeout: time.Second},
	}

	err := run(cfg)
	if err == nil {
		t.Fatal("run() = nil, want event bus error")
	}
	if !strings.Contains(err.Error(), "initialize event bus") {
		t.Errorf("run() = %v", err)
	}

	// Badger holds a directory lock until Close.
	store, err := kvstore.Open(&config.DatabaseConfig{Driver: config.DriverBadger, Path: dir})
	if err != nil {
		t.Fatalf("store still locked after run returned: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
