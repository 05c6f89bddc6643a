// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package metrics provides Prometheus metrics for the SitePulse server.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Ingestion:
  - sitepulse_events_accepted_total{type}
  - sitepulse_events_rejected_total{reason}
  - sitepulse_ingest_body_bytes (histogram)

Storage:
  - sitepulse_storage_operation_duration_seconds{backend,operation}
  - sitepulse_storage_errors_total{backend,operation,code}

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{limiter}

Query cache:
  - sitepulse_query_cache_hits_total
  - sitepulse_query_cache_misses_total

Event bus and live feed:
  - sitepulse_bus_messages_published_total
  - sitepulse_bus_publish_failures_total{reason}
  - sitepulse_bus_messages_consumed_total
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - websocket_connections
  - websocket_messages_sent_total
  - websocket_errors_total{error_type}

# Usage

	metrics.RecordStorageOperation("duckdb", "create", time.Since(start), err)
	metrics.RecordEventAccepted("pageview", len(body))

Storage error codes are read through an ErrorCode() method so this package
has no dependency on the database package.
*/
package metrics
