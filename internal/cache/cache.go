// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/sitepulse/internal/models"
)

// DefaultCleanupInterval is how often Serve sweeps expired entries.
const DefaultCleanupInterval = time.Minute

// Entry is one cached query result.
type Entry struct {
	Events    []models.Event
	ExpiresAt time.Time
}

// Stats tracks cache performance.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
	Evictions     int64
	TotalKeys     int64
	LastCleanup   time.Time
}

// QueryCache memoizes analytics query results per (siteID, limit).
//
// Entries are grouped by site so that ingesting one event for a site drops
// every cached page size for that site and nothing else. A cached result is
// therefore never staler than the TTL and never misses an event accepted
// after it was stored.
//
// Thread Safety: all methods are safe for concurrent use.
type QueryCache struct {
	mu    sync.RWMutex
	sites map[string]map[int]Entry
	ttl   time.Duration
	now   func() time.Time

	// seq is bumped on every invalidation. invalidated remembers the seq of
	// each site's latest invalidation; Set drops a result whose generation
	// predates it. Records older than the TTL are pruned by cleanup, which
	// raises floor so results read before a pruned record stay rejected.
	seq         uint64
	floor       uint64
	invalidated map[string]invalidation

	stats Stats
}

type invalidation struct {
	seq uint64
	at  time.Time
}

// New creates a QueryCache. Expired entries are removed lazily by Get and
// eagerly by Serve when it runs.
//
// Example:
//
//	c := cache.New(30 * time.Second)
//	gen := c.Generation(siteID)
//	if events, ok := c.Get(siteID, 100); ok {
//	    return events
//	}
//	events, _ := store.ListEvents(ctx, siteID, 100)
//	c.Set(siteID, 100, gen, events)
func New(ttl time.Duration) *QueryCache {
	return &QueryCache{
		sites:       make(map[string]map[int]Entry),
		invalidated: make(map[string]invalidation),
		ttl:         ttl,
		now:         time.Now,
		stats:       Stats{LastCleanup: time.Now()},
	}
}

// Get returns the cached events for (siteID, limit) if present and fresh.
// The returned slice is shared; callers must not modify it.
func (c *QueryCache) Get(siteID string, limit int) ([]models.Event, bool) {
	c.mu.RLock()
	entry, ok := c.sites[siteID][limit]
	c.mu.RUnlock()

	if !ok {
		c.record(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		if byLimit, ok := c.sites[siteID]; ok {
			delete(byLimit, limit)
			if len(byLimit) == 0 {
				delete(c.sites, siteID)
			}
		}
		c.stats.Misses++
		c.stats.Evictions++
		c.stats.TotalKeys = c.countLocked()
		c.mu.Unlock()
		return nil, false
	}

	c.record(func(s *Stats) { s.Hits++ })
	return entry.Events, true
}

// Generation returns the current invalidation generation. Read it before
// querying storage for siteID and pass it to Set.
func (c *QueryCache) Generation(_ string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}

// Set stores events for (siteID, limit) unless the site was invalidated
// after gen was read. It reports whether the entry was stored.
func (c *QueryCache) Set(siteID string, limit int, gen uint64, events []models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen < c.floor {
		return false
	}
	if inv, ok := c.invalidated[siteID]; ok && inv.seq > gen {
		return false
	}

	byLimit, ok := c.sites[siteID]
	if !ok {
		byLimit = make(map[int]Entry)
		c.sites[siteID] = byLimit
	}
	byLimit[limit] = Entry{Events: events, ExpiresAt: c.now().Add(c.ttl)}
	c.stats.TotalKeys = c.countLocked()
	return true
}

// InvalidateSite drops every cached page for siteID.
func (c *QueryCache) InvalidateSite(siteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.invalidated[siteID] = invalidation{seq: c.seq, at: c.now()}
	if byLimit, ok := c.sites[siteID]; ok {
		c.stats.Evictions += int64(len(byLimit))
		delete(c.sites, siteID)
	}
	c.stats.Invalidations++
	c.stats.TotalKeys = c.countLocked()
}

// Clear removes all entries.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.floor = c.seq
	c.invalidated = make(map[string]invalidation)
	c.stats.Evictions += c.countLocked()
	c.sites = make(map[string]map[int]Entry)
	c.stats.TotalKeys = 0
}

// GetStats returns a snapshot of cache statistics.
func (c *QueryCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the hit rate as a percentage.
func (c *QueryCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Serve sweeps expired entries every DefaultCleanupInterval until ctx is
// cancelled. It implements suture.Service.
func (c *QueryCache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// String identifies the service in supervisor logs.
func (c *QueryCache) String() string {
	return "query-cache"
}

func (c *QueryCache) cleanup() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for siteID, byLimit := range c.sites {
		for limit, entry := range byLimit {
			if now.After(entry.ExpiresAt) {
				delete(byLimit, limit)
				c.stats.Evictions++
			}
		}
		if len(byLimit) == 0 {
			delete(c.sites, siteID)
		}
	}
	for siteID, inv := range c.invalidated {
		if now.Sub(inv.at) > c.ttl {
			if inv.seq > c.floor {
				c.floor = inv.seq
			}
			delete(c.invalidated, siteID)
		}
	}
	c.stats.TotalKeys = c.countLocked()
	c.stats.LastCleanup = now
}

func (c *QueryCache) countLocked() int64 {
	var n int64
	for _, byLimit := range c.sites {
		n += int64(len(byLimit))
	}
	return n
}

func (c *QueryCache) record(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
