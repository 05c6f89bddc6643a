// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package cache provides the in-memory result cache in front of the analytics
query endpoint.

# Overview

QueryCache stores the event slice returned by database.Store.ListEvents,
keyed by site and page size. It provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration, checked lazily on Get
  - Per-site invalidation, called by the ingestion handler after every
    successful write
  - Generation counters so a slow query racing an ingest cannot store a
    result that is missing the new event

# Usage

	gen := c.Generation(siteID)
	if events, ok := c.Get(siteID, limit); ok {
	    return events
	}
	events, err := store.ListEvents(ctx, siteID, limit)
	if err == nil {
	    c.Set(siteID, limit, gen, events)
	}

# Lifecycle

Serve runs a periodic sweep of expired entries and of invalidation records
older than the TTL, and is registered with the supervisor tree. Without it, entries are still evicted lazily on access.
*/
package cache
