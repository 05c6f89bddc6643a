// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import "sync"

var (
	defaultMu      sync.Mutex
	defaultTracker *Tracker
)

// Default returns the package tracker, creating it on first use.
func Default() *Tracker {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultTracker == nil {
		defaultTracker = New()
	}
	return defaultTracker
}

// SetDefault replaces the package tracker.
func SetDefault(t *Tracker) {
	defaultMu.Lock()
	defaultTracker = t
	defaultMu.Unlock()
}

// Track sends a custom event through the default tracker. It is dropped
// silently until the default tracker is configured.
func Track(name string, data map[string]interface{}) {
	Default().TrackEvent(name, data)
}
