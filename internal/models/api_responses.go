// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package models

// TrackResponse acknowledges an accepted envelope (202).
type TrackResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every 4xx/5xx from the public endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalyticsResponse is the body of GET /api/analytics/{siteId}.
//
// Count is len(Events), the size of this page, not the number of events
// ever stored for the site.
type AnalyticsResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
	SiteID string  `json:"siteId"`
}

// NewAnalyticsResponse never returns a nil Events slice so an empty site
// serializes as [] rather than null.
func NewAnalyticsResponse(siteID string, events []Event) AnalyticsResponse {
	if events == nil {
		events = []Event{}
	}
	return AnalyticsResponse{Events: events, Count: len(events), SiteID: siteID}
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	EventBus  string `json:"eventBus,omitempty"`
	LiveConns int    `json:"liveConnections"`
	Uptime    string `json:"uptime"`
}
