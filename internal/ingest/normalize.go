// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package ingest

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/sitepulse/internal/models"
)

// Normalizer maps a Submission onto the flat storage record.
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

// NewNormalizer returns a Normalizer using wall-clock UTC time and UUIDv4 IDs.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Normalize builds the Event for sub. Exactly one variant's fields are set;
// the rest stay nil.
func (n *Normalizer) Normalize(sub *Submission) (*models.Event, error) {
	ev, err := n.common(sub)
	if err != nil {
		return nil, err
	}

	switch sub.Type {
	case models.EventTypePageView:
		url, err := optionalString(sub.Payload, "url", MsgInvalidPayload)
		if err != nil {
			return nil, err
		}
		ev.PageURL = &url

	case models.EventTypeEvent:
		name, err := optionalString(sub.Payload, "name", MsgInvalidPayload)
		if err != nil {
			return nil, err
		}
		ev.EventName = &name
		if data, ok := sub.Payload["data"]; ok && data != nil {
			raw, err := json.Marshal(data)
			if err != nil {
				return nil, invalid(MsgInvalidPayload)
			}
			ev.EventData = raw
		}

	case models.EventTypeWebVital:
		var p models.WebVitalPayload
		if p.Name, err = optionalString(sub.Payload, "name", MsgInvalidPayload); err != nil {
			return nil, err
		}
		if p.Value, err = optionalNumber(sub.Payload, "value", MsgInvalidPayload); err != nil {
			return nil, err
		}
		if p.ID, err = optionalString(sub.Payload, "id", MsgInvalidPayload); err != nil {
			return nil, err
		}
		if p.Label, err = optionalString(sub.Payload, "label", MsgInvalidPayload); err != nil {
			return nil, err
		}
		ev.MetricName = &p.Name
		ev.MetricValue = &p.Value
		ev.MetricID = &p.ID
		ev.MetricLabel = &p.Label

	default:
		// Parse already rejects these; kept so a new EventType cannot slip
		// through to storage unmapped.
		return nil, invalid(MsgUnknownEventType)
	}

	return ev, nil
}

func (n *Normalizer) common(sub *Submission) (*models.Event, error) {
	ts, err := optionalString(sub.Meta, "timestamp", MsgInvalidMeta)
	if err != nil {
		return nil, err
	}
	url, err := optionalString(sub.Meta, "url", MsgInvalidMeta)
	if err != nil {
		return nil, err
	}
	host, err := optionalString(sub.Meta, "hostname", MsgInvalidMeta)
	if err != nil {
		return nil, err
	}

	return &models.Event{
		ID:              n.newID(),
		Timestamp:       n.now(),
		Type:            sub.Type,
		SiteID:          sub.SiteID,
		ClientTimestamp: parseClientTimestamp(ts),
		URL:             url,
		Hostname:        host,
	}, nil
}

// parseClientTimestamp accepts RFC 3339 with or without fractional seconds,
// which covers JavaScript's Date.toISOString. Anything else yields nil.
func parseClientTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// optionalString returns "" for a missing or null key and a ValidationError
// carrying msg when the key holds a non-string.
func optionalString(m map[string]interface{}, key, msg string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid(msg)
	}
	return s, nil
}

func optionalNumber(m map[string]interface{}, key, msg string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, invalid(msg)
		}
		return f, nil
	default:
		return 0, invalid(msg)
	}
}
