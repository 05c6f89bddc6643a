// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package tracker is the client SDK that records pageviews, custom events
// and web vitals and posts them to a SitePulse ingestion endpoint.
//
// A Tracker is inert until configured with a site ID. Every tracking call is
// fire-and-forget: it never returns an error, never blocks on the network
// and drops the event when the tracker is not configured.
//
//	t := tracker.New()
//	t.Configure(tracker.Config{SiteID: "my-site", Endpoint: "https://example.com/api/track"})
//	t.TrackPageView("/pricing")
//	t.TrackEvent("signup", map[string]interface{}{"plan": "pro"})
//	defer t.Close(ctx)
//
// Delivery goes through a Transport. The BeaconTransport enqueues onto a
// bounded queue drained by a single worker and is used while it is open;
// the FetchTransport posts each event from its own goroutine and is the
// fallback once the beacon is closed.
//
// Provider adapts host lifecycle signals (props, navigation, metrics) onto
// a tracker, and Track sends a custom event through the package default.
package tracker
