// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package supervisor runs SitePulse's long-lived goroutines under a suture v4
tree.

	root ("sitepulse")
	├── data-layer
	│   ├── badger-gc      (database.driver=badger only)
	│   ├── query-cache    expired entry sweep
	│   └── site-limiter   idle bucket sweep
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-router   bus consumer feeding the hub and cache
	└── api-layer
	    └── http-server

Each layer counts failures on its own, so a flapping NATS connection
restarts the event router without touching the HTTP server. The SQL
stores are not supervised; they are plain handles closed by main after
the tree stops.

Supervisor events go through sutureslog into the zerolog-backed slog
handler from package logging, so restarts appear in the same JSON log
stream as request logs.

Restart policy, from TreeConfig:

	FailureThreshold  5     failures before backoff
	FailureDecay      30s   failure counter half-life
	FailureBackoff    15s   delay once over threshold
	ShutdownTimeout   10s   per-service stop budget

Services that miss ShutdownTimeout are listed by UnstoppedServiceReport,
which main logs on exit.
*/
package supervisor
