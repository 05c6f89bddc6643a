// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package models

// EventType discriminates the envelope payload. The set is closed: every
// switch over EventType must handle exactly these three values.
type EventType string

const (
	EventTypePageView EventType = "pageview"
	EventTypeEvent    EventType = "event"
	EventTypeWebVital EventType = "webvital"
)

// EventTypes lists the recognized discriminators.
var EventTypes = []EventType{EventTypePageView, EventTypeEvent, EventTypeWebVital}

// ParseEventType reports whether s names a recognized event type.
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case EventTypePageView, EventTypeEvent, EventTypeWebVital:
		return t, true
	default:
		return "", false
	}
}

// Meta is the common block the tracker attaches to every envelope.
type Meta struct {
	// Timestamp is the client wall clock in ISO-8601.
	Timestamp string `json:"timestamp"`
	// URL is the current path on the client.
	URL      string `json:"url"`
	Hostname string `json:"hostname"`
}

// Payload is implemented by the three variant payloads.
type Payload interface {
	EventType() EventType
}

// PageViewPayload is the payload of a pageview envelope.
type PageViewPayload struct {
	URL string `json:"url"`
}

// CustomEventPayload is the payload of an event envelope. Data is any JSON
// object supplied by the host application.
type CustomEventPayload struct {
	Name string                 `json:"name"`
	Data map[string]interface{} `json:"data"`
}

// WebVitalPayload is a browser performance metric, forwarded verbatim.
type WebVitalPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	ID    string  `json:"id"`
	Label string  `json:"label"`
}

func (PageViewPayload) EventType() EventType    { return EventTypePageView }
func (CustomEventPayload) EventType() EventType { return EventTypeEvent }
func (WebVitalPayload) EventType() EventType    { return EventTypeWebVital }

// Envelope is the wire format posted to /api/track.
type Envelope struct {
	SiteID  string    `json:"siteId"`
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
	Meta    Meta      `json:"meta"`
}

// NewEnvelope tags the envelope with the payload's own type so the two can
// never disagree.
func NewEnvelope(siteID string, p Payload, meta Meta) Envelope {
	return Envelope{
		SiteID:  siteID,
		Type:    p.EventType(),
		Payload: p,
		Meta:    meta,
	}
}
