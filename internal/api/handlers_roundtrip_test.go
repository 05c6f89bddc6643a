// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
)

// newSQLiteServer serves the full router over an in-memory SQLite store.
func newSQLiteServer(t *testing.T) http.Handler {
	t.Helper()
	quietLogs(t)
	store, err := database.Open(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := NewHandler(store, nil)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return NewRouter(h, mw).SetupChi()
}

func envelopeJSON(t *testing.T, siteID, eventType string, payload map[string]interface{}) string {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"siteId":  siteID,
		"type":    eventType,
		"payload": payload,
		"meta": map[string]interface{}{
			"timestamp": "2024-01-01T00:00:00Z",
			"url":       "/about",
			"hostname":  "example.com",
		},
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return string(body)
}

func analyticsPath(siteID string) string {
	return "/api/analytics/" + url.PathEscape(siteID)
}

func TestRoundTrip_PageViewExample(t *testing.T) {
	srv := newSQLiteServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/track", envelopeJSON(t, "s1", "pageview", map[string]interface{}{"url": "/about"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("track status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodGet, "/api/analytics/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeAnalytics(t, rec.Body.Bytes())
	if resp.Count != 1 || len(resp.Events) != 1 || resp.SiteID != "s1" {
		t.Fatalf("response = %+v", resp)
	}
	ev := resp.Events[0]
	if ev.Type != "pageview" || ev.Hostname != "example.com" || ev.URL != "/about" {
		t.Errorf("event = %+v", ev)
	}
	if ev.PageURL == nil || *ev.PageURL != "/about" {
		t.Errorf("pageUrl = %v, want /about", ev.PageURL)
	}
	if ev.ClientTimestamp == nil || ev.ClientTimestamp.Year() != 2024 {
		t.Errorf("clientTimestamp = %v", ev.ClientTimestamp)
	}
}

func TestRoundTrip_EventWithoutDataStoresNull(t *testing.T) {
	srv := newSQLiteServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/track", envelopeJSON(t, "s1", "event", map[string]interface{}{"name": "click"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("track status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodGet, "/api/analytics/s1", "")
	body := rec.Body.String()
	if !strings.Contains(body, `"eventName":"click"`) || !strings.Contains(body, `"eventData":null`) {
		t.Errorf("body = %s, want eventName click and an explicit null eventData", body)
	}
}

func TestRoundTrip_EveryAcceptedSiteIDCanBeRead(t *testing.T) {
	srv := newSQLiteServer(t)

	siteIDs := []string{
		strings.Repeat("a", 300),
		"a/b",
		"tab\tsite",
		"my site",
		"100%",
		"émoji-✓",
	}
	for _, siteID := range siteIDs {
		t.Run(url.PathEscape(siteID), func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/api/track", envelopeJSON(t, siteID, "pageview", map[string]interface{}{"url": "/"}))
			if rec.Code != http.StatusAccepted {
				t.Fatalf("track status = %d: %s", rec.Code, rec.Body.String())
			}

			rec = doRequest(srv, http.MethodGet, analyticsPath(siteID), "")
			if rec.Code != http.StatusOK {
				t.Fatalf("analytics status = %d: %s", rec.Code, rec.Body.String())
			}
			resp := decodeAnalytics(t, rec.Body.Bytes())
			if resp.SiteID != siteID || resp.Count != 1 {
				t.Errorf("siteId = %q count = %d, want %q and 1", resp.SiteID, resp.Count, siteID)
			}
		})
	}
}

func TestRoundTrip_PaddedSiteIDIsTrimmedOnBothSides(t *testing.T) {
	srv := newSQLiteServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/track", envelopeJSON(t, "  s2  ", "pageview", map[string]interface{}{"url": "/"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("track status = %d", rec.Code)
	}
	rec = doRequest(srv, http.MethodGet, analyticsPath(" s2 "), "")
	if resp := decodeAnalytics(t, rec.Body.Bytes()); resp.SiteID != "s2" || resp.Count != 1 {
		t.Errorf("response = %+v", resp)
	}
}
