// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Command server runs the SitePulse collection and query API.

Startup order:

 1. Configuration: koanf defaults, optional config.yaml, environment
 2. Logging: zerolog, JSON or console
 3. Storage: duckdb (default), sqlite or badger via database.driver
 4. Query cache and per-site limiter, if enabled
 5. Websocket hub for /api/live
 6. Event bus (memory or NATS) with a breaker-guarded publisher and a
    router feeding the hub and cache invalidation
 7. Supervisor tree, then the HTTP server inside it

SIGINT or SIGTERM cancels the tree. The HTTP server drains for
server.shutdown_timeout, then the bus and the store are closed.

Common environment overrides:

	HTTP_PORT=8080
	DB_DRIVER=sqlite
	DB_PATH=/data/sitepulse.db
	EVENTBUS_BACKEND=nats
	NATS_EMBEDDED=true
	SITE_RATE_LIMIT_RPS=50
	LOG_FORMAT=console
*/
package main
