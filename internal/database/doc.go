// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package database persists telemetry records.
//
// # Backends
//
// Store is implemented by:
//   - DuckDBStore: default, CGO-based (github.com/duckdb/duckdb-go/v2)
//   - SQLiteStore: pure Go (modernc.org/sqlite), for CGO-free builds
//   - kvstore.BadgerStore: embedded key-value store (separate package)
//
// Both SQL backends share one table and one pair of statements. Timestamps
// are stored as Unix microseconds.
//
// # Schema
//
//	events(id, ts_us, event_type, site_id, client_ts_us, url, hostname,
//	       page_url, event_name, event_data,
//	       metric_name, metric_value, metric_id, metric_label)
//
// Variant columns are NULL unless the row's event_type owns them. CreateEvent
// refuses a record that violates this before touching the database.
//
// # Errors
//
// Every failure is a *StoreError carrying one of the SPxxx codes. HTTP
// handlers expose only the code.
package database
