// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/models"
)

// timestampLayout matches ISO-8601 with millisecond precision in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Config is the tracker configuration. It is replaced wholesale, never
// mutated in place.
type Config struct {
	SiteID   string
	Endpoint string
	Debug    bool
}

// Location reports where the host currently is.
type Location interface {
	Path() string
	Hostname() string
}

// StaticLocation is a Location with fixed values.
type StaticLocation struct {
	URL  string
	Host string
}

func (l StaticLocation) Path() string     { return l.URL }
func (l StaticLocation) Hostname() string { return l.Host }

// Metric is a browser performance measurement forwarded verbatim.
type Metric = models.WebVitalPayload

// Tracker builds envelopes and hands them to a transport.
type Tracker struct {
	cfg atomic.Pointer[Config]
	mu  sync.Mutex

	location Location
	client   *http.Client
	primary  Transport
	fallback Transport
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithLocation sets the source of meta.url and meta.hostname.
func WithLocation(loc Location) Option {
	return func(t *Tracker) { t.location = loc }
}

// WithHTTPClient sets the client used by the default transports.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Tracker) { t.client = client }
}

// WithTransports replaces the default beacon and fetch transports. Either
// may be nil.
func WithTransports(primary, fallback Transport) Option {
	return func(t *Tracker) {
		t.primary = primary
		t.fallback = fallback
	}
}

// WithClock overrides the time source for meta.timestamp.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New returns an unconfigured tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		logger: logging.WithComponent("tracker"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.primary == nil && t.fallback == nil {
		t.primary = NewBeaconTransport(t.client, DefaultQueueSize, t.logger)
		t.fallback = NewFetchTransport(t.client, t.logger)
	}
	return t
}

// Configure swaps in cfg. Equal configs are ignored.
func (t *Tracker) Configure(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur := t.cfg.Load(); cur != nil && *cur == cfg {
		return
	}
	next := cfg
	t.cfg.Store(&next)

	if cfg.Debug {
		t.logger.Info().
			Str("siteId", cfg.SiteID).
			Str("endpoint", cfg.Endpoint).
			Bool("debug", cfg.Debug).
			Msg("configured")
	}
}

// Config returns a copy of the current configuration and whether one is set.
func (t *Tracker) Config() (Config, bool) {
	cur := t.cfg.Load()
	if cur == nil {
		return Config{}, false
	}
	return *cur, true
}

// IsConfigured reports whether events will be sent.
func (t *Tracker) IsConfigured() bool {
	cur := t.cfg.Load()
	return cur != nil && cur.SiteID != ""
}

// TrackPageView records a view of path.
func (t *Tracker) TrackPageView(path string) {
	cfg, ok := t.active("pageview", path)
	if !ok {
		return
	}
	if cfg.Debug {
		t.logger.Info().Str("path", path).Msg("tracking page view")
	}
	t.send(cfg, models.PageViewPayload{URL: path})
}

// TrackEvent records a custom event. A nil data map is sent as {}.
func (t *Tracker) TrackEvent(name string, data map[string]interface{}) {
	cfg, ok := t.active("event", name)
	if !ok {
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	if cfg.Debug {
		t.logger.Info().Str("name", name).Interface("data", data).Msg("tracking event")
	}
	t.send(cfg, models.CustomEventPayload{Name: name, Data: data})
}

// TrackWebVital records a performance metric.
func (t *Tracker) TrackWebVital(m Metric) {
	cfg, ok := t.active("webvital", m.Name)
	if !ok {
		return
	}
	if cfg.Debug {
		t.logger.Info().Str("name", m.Name).Float64("value", m.Value).Msg("tracking web vital")
	}
	t.send(cfg, m)
}

// Close stops the transports, waiting for queued and in-flight sends until
// ctx is done. Tracking calls after Close are dropped by the transports.
func (t *Tracker) Close(ctx context.Context) error {
	var errs []error
	for _, tr := range []Transport{t.primary, t.fallback} {
		if c, ok := tr.(interface{ Close(context.Context) error }); ok {
			errs = append(errs, c.Close(ctx))
		}
	}
	return errors.Join(errs...)
}

// active returns the config to send with, or false when the call must be
// dropped. The drop notice is only logged in debug mode.
func (t *Tracker) active(kind, name string) (Config, bool) {
	cur := t.cfg.Load()
	if cur == nil {
		return Config{}, false
	}
	if cur.SiteID == "" {
		if cur.Debug {
			t.logger.Warn().
				Str("type", kind).
				Str("name", name).
				Msg("not configured (missing siteId?), event dropped")
		}
		return Config{}, false
	}
	return *cur, true
}

func (t *Tracker) send(cfg Config, p models.Payload) {
	env := models.NewEnvelope(cfg.SiteID, p, t.meta())

	body, err := json.Marshal(env)
	if err != nil {
		t.logger.Error().Err(err).Str("type", string(env.Type)).Msg("failed to encode event")
		return
	}
	if cfg.Debug {
		t.logger.Debug().RawJSON("body", body).Msg("sending data")
	}

	tr := t.transport()
	if tr == nil {
		t.logger.Warn().Msg("no transport available, event dropped")
		return
	}
	tr.Send(cfg.Endpoint, body)
}

func (t *Tracker) meta() models.Meta {
	m := models.Meta{Timestamp: t.now().UTC().Format(timestampLayout)}
	if t.location != nil {
		m.URL = t.location.Path()
		m.Hostname = t.location.Hostname()
	}
	return m
}

// transport picks the primary while it reports itself available.
func (t *Tracker) transport() Transport {
	if t.primary != nil {
		a, ok := t.primary.(interface{ Available() bool })
		if !ok || a.Available() {
			return t.primary
		}
	}
	return t.fallback
}
