// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package middleware provides observability middleware for the chi router.

Key Components:

  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - AccessLog: per-request debug log and slow request warnings through the
    request-scoped zerolog logger

Both wrap the response with chi's WrapResponseWriter, which preserves
http.Hijacker for the websocket endpoint.

Middleware Stack:

	r := chi.NewRouter()
	r.Use(api.RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(time.Second))

CORS, rate limiting and security headers live in package api next to the
routes they protect.
*/
package middleware
