// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware factory uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// NewChiMiddlewareFromConfig maps the ratelimit config section.
func NewChiMiddlewareFromConfig(cfg config.RateLimitConfig) *ChiMiddleware {
	return NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: cfg.Requests,
		RateLimitWindow:   cfg.Window,
		RateLimitDisabled: cfg.Disabled,
	})
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	mw := router.chiMiddleware

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Ingestion
	r.Group(func(r chi.Router) {
		// CORS runs first so 429 responses stay readable by the browser.
		r.Use(mw.TrackCORS())
		r.Use(APISecurityHeaders())
		r.Use(mw.RateLimit())

		r.Post("/api/track", h.Track)
		r.Options("/api/track", h.TrackPreflight)
	})

	// Query
	r.Group(func(r chi.Router) {
		r.Use(mw.AnalyticsCORS())
		r.Use(APISecurityHeaders())
		r.Use(mw.RateLimitAnalytics())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/api/analytics", h.Analytics)
		r.Get("/api/analytics/", h.Analytics)
		r.Get("/api/analytics/{siteId}", h.Analytics)
		r.Options("/api/analytics", h.AnalyticsPreflight)
		r.Options("/api/analytics/", h.AnalyticsPreflight)
		r.Options("/api/analytics/{siteId}", h.AnalyticsPreflight)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())

		r.Get("/api/health", h.Health)
		r.Get("/api/health/ready", h.HealthReady)
	})

	r.With(mw.RateLimitWebSocket()).Get("/api/live", h.Live)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
