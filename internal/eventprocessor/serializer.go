// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package eventprocessor

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/models"
)

// Message metadata keys.
const (
	MetadataSiteID    = "site_id"
	MetadataEventType = "event_type"
)

// NewEventMessage wraps a stored record. The message UUID is the record ID
// so duplicates are recognizable downstream.
func NewEventMessage(ev *models.Event) (*message.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(ev.ID, data)
	msg.Metadata.Set(MetadataSiteID, ev.SiteID)
	msg.Metadata.Set(MetadataEventType, string(ev.Type))
	return msg, nil
}

// DecodeEvent reverses NewEventMessage.
func DecodeEvent(msg *message.Message) (*models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	if string(ev.EventData) == "null" {
		ev.EventData = nil
	}
	return &ev, nil
}
