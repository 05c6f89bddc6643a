// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sitepulse/internal/cache"
	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/eventprocessor"
	"github.com/tomtom215/sitepulse/internal/models"
	"github.com/tomtom215/sitepulse/internal/testinfra"
)

func quietLogs(t *testing.T) {
	t.Helper()
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })
}

func memoryBusConfig() *config.EventBusConfig {
	return &config.EventBusConfig{
		Enabled:            true,
		Backend:            config.BusMemory,
		Topic:              "sitepulse.test",
		BreakerMaxRequests: 1,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     time.Second,
		BreakerFailures:    5,
	}
}

func TestInitEventBus_Disabled(t *testing.T) {
	quietLogs(t)
	c, err := InitEventBus(&config.EventBusConfig{Enabled: false})
	if err != nil || c != nil {
		t.Fatalf("InitEventBus = %v, %v; want nil, nil", c, err)
	}
	if c.Publisher() != nil {
		t.Error("nil components must return a nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil components = %v", err)
	}
}

func TestInitEventBus_UnknownBackend(t *testing.T) {
	quietLogs(t)
	cfg := memoryBusConfig()
	cfg.Backend = "kafka"
	if _, err := InitEventBus(cfg); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestBusComponents_FanOut(t *testing.T) {
	quietLogs(t)
	c, err := InitEventBus(memoryBusConfig())
	if err != nil {
		t.Fatalf("InitEventBus: %v", err)
	}
	defer c.Close()

	received := make(chan *models.Event, 1)
	c.AddSink("recorder", eventprocessor.EventSinkFunc(func(_ context.Context, ev *models.Event) error {
		received <- ev
		return nil
	}))

	qc := cache.New(time.Minute)
	qc.Set("site-a", 100, qc.Generation("site-a"), []models.Event{})
	c.AddSink(sinkCacheInvalidate, cacheInvalidationSink(qc))

	runner, err := c.RouterFactory()()
	if err != nil {
		t.Fatalf("RouterFactory: %v", err)
	}
	router := runner.(*eventprocessor.Router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	ev := testinfra.PageView("site-a", "/", 0)
	if err := c.Publisher().PublishEvent(ctx, ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != ev.ID || got.SiteID != "site-a" {
			t.Errorf("received %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sink never received the event")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := qc.Get("site-a", 100); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache was not invalidated by the bus")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := router.Close(); err != nil {
		t.Errorf("router Close: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	quietLogs(t)
	tests := []struct {
		driver      string
		wantService bool
	}{
		{config.DriverSQLite, false},
		{config.DriverBadger, true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			store, svc, err := openStore(&config.DatabaseConfig{Driver: tt.driver, Path: ":memory:"})
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer store.Close()

			if (svc != nil) != tt.wantService {
				t.Errorf("maintenance service = %v, want present=%v", svc, tt.wantService)
			}
			if err := store.Ping(context.Background()); err != nil {
				t.Errorf("Ping: %v", err)
			}
		})
	}

	if _, _, err := openStore(&config.DatabaseConfig{Driver: "postgres", Path: "x"}); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}
