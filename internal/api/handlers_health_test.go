// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/models"
)

func decodeHealth(t *testing.T, body []byte) models.HealthResponse {
	t.Helper()
	var resp models.HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode health %q: %v", body, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name        string
		pingErr     error
		publisher   EventPublisher
		wantStatus  string
		wantStorage string
		wantBus     string
	}{
		{"healthy without bus", nil, nil, statusHealthy, "ok", "disabled"},
		{"degraded storage", errBoom, nil, statusDegraded, "unavailable", "disabled"},
		{"breaker state", nil, &recordingPublisher{state: "open"}, statusHealthy, "ok", "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t, &mockStore{pingErr: tt.pingErr}, func(h *Handler) {
				if tt.publisher != nil {
					h.SetEventPublisher(tt.publisher)
				}
			})

			rec := doRequest(srv, http.MethodGet, "/api/health", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			resp := decodeHealth(t, rec.Body.Bytes())
			if resp.Status != tt.wantStatus || resp.Storage != tt.wantStorage || resp.EventBus != tt.wantBus {
				t.Errorf("resp = %+v", resp)
			}
			if resp.Uptime == "" {
				t.Error("uptime missing")
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	_, srv := newTestServer(t, &mockStore{})
	rec := doRequest(srv, http.MethodGet, "/api/health/ready", "")
	if rec.Code != http.StatusOK || decodeHealth(t, rec.Body.Bytes()).Status != statusReady {
		t.Errorf("ready = %d %s", rec.Code, rec.Body.String())
	}

	_, srv = newTestServer(t, &mockStore{pingErr: errBoom})
	rec = doRequest(srv, http.MethodGet, "/api/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable || decodeHealth(t, rec.Body.Bytes()).Status != statusNotReady {
		t.Errorf("not ready = %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealth_SecurityHeadersAndRequestID(t *testing.T) {
	_, srv := newTestServer(t, &mockStore{})

	rec := doRequest(srv, http.MethodGet, "/api/health", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("response is missing X-Request-Id")
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	if got := serve(srv, req).Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want the caller's id echoed", got)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	_, srv := newTestServer(t, &mockStore{})
	rec := doRequest(srv, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || decodeError(t, rec) != "Not found" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestServer(t, &mockStore{})
	doRequest(srv, http.MethodGet, "/api/health", "")

	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty exposition")
	}
}
