// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	siteLimiterCleanupInterval = 5 * time.Minute
	siteLimiterIdleTTL         = time.Hour
)

// SiteLimiter is a token bucket per site ID for the ingest endpoint. It
// complements the per-IP limit: one busy tenant cannot starve the store.
type SiteLimiter struct {
	mu       sync.Mutex
	limiters map[string]*siteLimiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type siteLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewSiteLimiter allows rps events per second per site with the given
// burst. It returns nil when rps is not positive, which disables limiting.
func NewSiteLimiter(rps float64, burst int) *SiteLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &SiteLimiter{
		limiters: make(map[string]*siteLimiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for siteID. A nil limiter allows everything.
func (l *SiteLimiter) Allow(siteID string) bool {
	if l == nil {
		return true
	}

	now := l.now()
	l.mu.Lock()
	entry, ok := l.limiters[siteID]
	if !ok {
		entry = &siteLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[siteID] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Len returns the number of tracked sites.
func (l *SiteLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *SiteLimiter) cleanup() {
	threshold := l.now().Add(-siteLimiterIdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for site, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, site)
		}
	}
}

// Serve drops idle buckets until ctx is done.
func (l *SiteLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(siteLimiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *SiteLimiter) String() string {
	return "site-limiter"
}
