// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package api provides the HTTP surface of the SitePulse server.

Routes:

	POST    /api/track                 ingest one envelope (202/400/429/500)
	OPTIONS /api/track                 preflight, 204
	GET     /api/analytics/{siteId}    newest events for a site (200/400/500)
	OPTIONS /api/analytics/{siteId}    preflight, 204
	GET     /api/health                liveness plus storage ping
	GET     /api/health/ready          503 until storage answers
	GET     /api/live?siteId=          websocket feed of accepted events
	GET     /metrics                   Prometheus exposition

Every error body is {"error": "<message>"}. Ingest messages are fixed and
documented in package ingest; storage failures surface only their code, as
in "Database error: SP002".

Middleware order, outermost first: request ID, real IP, panic recovery,
access log, Prometheus, then per-group rate limit, security headers and
CORS. Both public groups allow any origin because the tracker runs on
customer sites.

The analytics endpoint is unauthenticated. Each call logs "auth check
skipped" at warn level so the gap stays visible in production logs.
*/
package api
