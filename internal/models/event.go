// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Event is the single denormalized storage record for all event types.
//
// Common fields are always set. Variant fields are pointers and serialize
// as JSON null unless the record's Type owns them:
//   - pageview: PageURL
//   - event:    EventName, EventData
//   - webvital: MetricName, MetricValue, MetricID, MetricLabel
//
// EventData is a raw JSON value. It is nil (serialized as null, never
// omitted) when the custom event carried no data.
type Event struct {
	ID string `json:"id"`

	// Timestamp is the server receive time and the query ordering key.
	Timestamp time.Time `json:"timestamp"`

	Type   EventType `json:"type"`
	SiteID string    `json:"siteId"`

	// ClientTimestamp is meta.timestamp parsed; nil if it was not ISO-8601.
	ClientTimestamp *time.Time `json:"clientTimestamp"`
	URL             string     `json:"url"`
	Hostname        string     `json:"hostname"`

	PageURL *string `json:"pageUrl"`

	EventName *string         `json:"eventName"`
	EventData json.RawMessage `json:"eventData"`

	MetricName  *string  `json:"metricName"`
	MetricValue *float64 `json:"metricValue"`
	MetricID    *string  `json:"metricId"`
	MetricLabel *string  `json:"metricLabel"`
}

// HasOnlyVariantFields reports whether the record obeys the variant rule:
// fields of other variants are nil. Storage backends call it before writing.
func (e *Event) HasOnlyVariantFields() bool {
	pageview := e.PageURL != nil
	custom := e.EventName != nil || e.EventData != nil
	vital := e.MetricName != nil || e.MetricValue != nil || e.MetricID != nil || e.MetricLabel != nil

	switch e.Type {
	case EventTypePageView:
		return !custom && !vital
	case EventTypeEvent:
		return !pageview && !vital
	case EventTypeWebVital:
		return !pageview && !custom
	default:
		return false
	}
}
