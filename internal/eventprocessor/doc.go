// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package eventprocessor fans accepted events out to in-process and
// cross-instance consumers using Watermill.
//
// Storage is the system of record. The ingestion handler writes an event,
// answers the client, and only then publishes the stored record here.
// Publish failures are logged and never surface to the client.
//
//	POST /api/track
//	      │ store.CreateEvent
//	      ▼
//	  Publisher ──(circuit breaker)──▶ topic
//	                                    │
//	                 ┌──────────────────┼──────────────────┐
//	                 ▼                                     ▼
//	          live-feed sink                      cache-invalidation sink
//
// # Backends
//
//   - memory: a single gochannel pub/sub. Events stay in this process.
//   - nats: core NATS without JetStream. Every instance subscribes without
//     a queue group so each one invalidates its own cache and feeds its
//     own WebSocket clients. An embedded server can be started in-process
//     for single-node deployments.
//
// # Delivery
//
// Delivery is at-most-once across restarts. Inside a running process the
// Router retries a failing sink with exponential backoff before giving up.
package eventprocessor
