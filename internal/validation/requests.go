// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package validation

// AnalyticsQuery is GET /api/analytics/{siteId}?limit=N after parsing.
type AnalyticsQuery struct {
	SiteID string `json:"siteId" validate:"required,siteid"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// LiveSubscription is GET /api/live?siteId=...
type LiveSubscription struct {
	SiteID string `json:"siteId" validate:"required,siteid"`
}

// TrackerTarget is what the CLI needs before it can send anything.
type TrackerTarget struct {
	SiteID   string `json:"siteId" validate:"required,siteid"`
	Endpoint string `json:"endpoint" validate:"required,http_url"`
}
