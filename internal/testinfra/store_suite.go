// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package testinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/models"
)

// StoreFactory opens a fresh, empty store. The suite closes it.
type StoreFactory func(t *testing.T) database.Store

// RunStoreSuite runs the behavior every Store backend must share.
func RunStoreSuite(t *testing.T, newStore StoreFactory) {
	t.Run("empty site returns empty slice", func(t *testing.T) {
		s := open(t, newStore)
		events, err := s.ListEvents(context.Background(), "nobody", 100)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if events == nil || len(events) != 0 {
			t.Errorf("ListEvents() = %v, want empty non-nil slice", events)
		}
	})

	t.Run("caps at 100 newest first", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		for i := 0; i < 150; i++ {
			mustCreate(t, s, PageView("capped", "/p", time.Duration(i)*time.Second))
		}

		events, err := s.ListEvents(ctx, "capped", 500)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if len(events) != database.MaxListLimit {
			t.Fatalf("len = %d, want %d", len(events), database.MaxListLimit)
		}
		want := BaseTime.Add(149 * time.Second)
		if !events[0].Timestamp.Equal(want) {
			t.Errorf("first timestamp = %v, want %v", events[0].Timestamp, want)
		}
		for i := 1; i < len(events); i++ {
			if events[i].Timestamp.After(events[i-1].Timestamp) {
				t.Fatalf("events not ordered newest first at index %d", i)
			}
		}
	})

	t.Run("smaller limit honored", func(t *testing.T) {
		s := open(t, newStore)
		for i := 0; i < 5; i++ {
			mustCreate(t, s, PageView("small", "/", time.Duration(i)*time.Minute))
		}
		events, err := s.ListEvents(context.Background(), "small", 2)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if len(events) != 2 {
			t.Errorf("len = %d, want 2", len(events))
		}
	})

	t.Run("sites are isolated", func(t *testing.T) {
		s := open(t, newStore)
		mustCreate(t, s, PageView("a", "/a", 0))
		mustCreate(t, s, PageView("b", "/b", time.Second))

		events, err := s.ListEvents(context.Background(), "a", 100)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if len(events) != 1 || events[0].SiteID != "a" {
			t.Errorf("ListEvents(a) = %+v", events)
		}
	})

	t.Run("variant fields round trip", func(t *testing.T) {
		s := open(t, newStore)
		pv := PageView("rt", "/home", 0)
		withData := CustomEvent("rt", "signup", map[string]interface{}{"plan": "pro"}, time.Second)
		nullData := CustomEvent("rt", "click", nil, 2*time.Second)
		vital := WebVital("rt", "LCP", 1234.5, 3*time.Second)
		for _, ev := range []*models.Event{pv, withData, nullData, vital} {
			mustCreate(t, s, ev)
		}

		events, err := s.ListEvents(context.Background(), "rt", 100)
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if len(events) != 4 {
			t.Fatalf("len = %d, want 4", len(events))
		}
		byID := make(map[string]models.Event, len(events))
		for _, ev := range events {
			if !ev.HasOnlyVariantFields() {
				t.Errorf("stored record %s leaks variant fields", ev.ID)
			}
			byID[ev.ID] = ev
		}

		if got := byID[pv.ID]; got.PageURL == nil || *got.PageURL != "/home" || got.ClientTimestamp == nil {
			t.Errorf("pageview = %+v", got)
		}
		if got := byID[withData.ID]; string(got.EventData) != `{"plan":"pro"}` {
			t.Errorf("eventData = %s", got.EventData)
		}
		if got := byID[nullData.ID]; got.EventData != nil || got.EventName == nil {
			t.Errorf("null eventData = %s name=%v", got.EventData, got.EventName)
		}
		if got := byID[vital.ID]; got.MetricValue == nil || *got.MetricValue != 1234.5 || *got.MetricLabel != "web-vital" {
			t.Errorf("webvital = %+v", got)
		}
	})

	t.Run("rejects variant leak", func(t *testing.T) {
		s := open(t, newStore)
		ev := PageView("leak", "/", 0)
		name := "click"
		ev.EventName = &name

		err := s.CreateEvent(context.Background(), ev)
		var se *database.StoreError
		if !errors.As(err, &se) || se.Code != database.CodeInvalid {
			t.Fatalf("CreateEvent() error = %v, want CodeInvalid StoreError", err)
		}
		events, _ := s.ListEvents(context.Background(), "leak", 100)
		if len(events) != 0 {
			t.Errorf("rejected record was stored")
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t, newStore)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func open(t *testing.T, newStore StoreFactory) database.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func mustCreate(t *testing.T, s database.Store, ev *models.Event) {
	t.Helper()
	if err := s.CreateEvent(context.Background(), ev); err != nil {
		t.Fatalf("CreateEvent(%s) error = %v", ev.ID, err)
	}
}
