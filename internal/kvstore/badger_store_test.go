// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/testinfra"
)

func newMemoryStore(t *testing.T) database.Store {
	t.Helper()
	s, err := Open(&config.DatabaseConfig{Driver: config.DriverBadger, Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestBadgerStore(t *testing.T) {
	testinfra.RunStoreSuite(t, newMemoryStore)
}

func TestBadgerStore_PrefixSiteIsolation(t *testing.T) {
	s := newMemoryStore(t)
	defer s.Close()
	ctx := context.Background()

	// "ab" must not see "abc" records even though one is a string prefix
	// of the other.
	if err := s.CreateEvent(ctx, testinfra.PageView("ab", "/", 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateEvent(ctx, testinfra.PageView("abc", "/", time.Second)); err != nil {
		t.Fatal(err)
	}

	events, err := s.ListEvents(ctx, "ab", 100)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].SiteID != "ab" {
		t.Errorf("ListEvents(ab) = %+v", events)
	}
}

func TestBadgerStore_DuplicateIsInvalid(t *testing.T) {
	s := newMemoryStore(t)
	defer s.Close()

	ev := testinfra.PageView("dup", "/", 0)
	if err := s.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	err := s.CreateEvent(context.Background(), ev)
	var se *database.StoreError
	if !errors.As(err, &se) || se.Code != database.CodeInvalid {
		t.Errorf("duplicate CreateEvent() = %v, want CodeInvalid", err)
	}
}

func TestBadgerStore_ClosedStore(t *testing.T) {
	s := newMemoryStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	var se *database.StoreError
	err := s.CreateEvent(context.Background(), testinfra.PageView("x", "/", 0))
	if !errors.As(err, &se) || se.Code != database.CodeConnection {
		t.Errorf("CreateEvent() after Close = %v, want CodeConnection", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close should fail")
	}
}

func TestBadgerStore_ServeStopsOnCancel(t *testing.T) {
	s, err := Open(&config.DatabaseConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	s.gcInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestSitePrefixLengthEncoded(t *testing.T) {
	a := sitePrefix("ab")
	b := sitePrefix("abc")
	if string(a[:len(keyPrefix)]) != keyPrefix {
		t.Fatalf("prefix = %q", a)
	}
	if a[len(keyPrefix)+1] == b[len(keyPrefix)+1] {
		t.Error("length byte should differ for different site id lengths")
	}
}
