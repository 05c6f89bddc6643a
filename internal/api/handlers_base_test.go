// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/models"
)

// mockStore is an in-memory database.Store with injectable failures.
type mockStore struct {
	mu        sync.Mutex
	events    []models.Event
	createErr error
	listErr   error
	pingErr   error
	listCalls int
}

func (m *mockStore) CreateEvent(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, *ev)
	return nil
}

func (m *mockStore) ListEvents(_ context.Context, siteID string, limit int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	limit = database.ClampLimit(limit)
	out := []models.Event{}
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].SiteID == siteID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) Close() error { return nil }

func (m *mockStore) stored() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...)
}

var _ database.Store = (*mockStore)(nil)

// recordingPublisher captures published events.
type recordingPublisher struct {
	ch    chan *models.Event
	err   error
	state string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ch: make(chan *models.Event, 8), state: "closed"}
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev *models.Event) error {
	p.ch <- ev
	return p.err
}

func (p *recordingPublisher) BreakerState() string { return p.state }

func quietLogs(t *testing.T) {
	t.Helper()
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })
}

func newTestServer(t *testing.T, store *mockStore, configure ...func(*Handler)) (*Handler, http.Handler) {
	t.Helper()
	quietLogs(t)
	h := NewHandler(store, nil)
	for _, fn := range configure {
		fn(h)
	}
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return h, NewRouter(h, mw).SetupChi()
}

func doRequest(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return serve(handler, req)
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

var errBoom = errors.New("boom")
