// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package testinfra

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/models"
)

// BaseTime anchors fixture timestamps so ordering assertions are stable.
var BaseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var fixtureSeq int

func nextID() string {
	fixtureSeq++
	return fmt.Sprintf("fixture-%06d", fixtureSeq)
}

func strPtr(s string) *string { return &s }

// PageView returns a pageview record received offset after BaseTime.
func PageView(siteID, path string, offset time.Duration) *models.Event {
	client := BaseTime.Add(offset - time.Second)
	return &models.Event{
		ID:              nextID(),
		Timestamp:       BaseTime.Add(offset),
		Type:            models.EventTypePageView,
		SiteID:          siteID,
		ClientTimestamp: &client,
		URL:             path,
		Hostname:        "example.com",
		PageURL:         strPtr(path),
	}
}

// CustomEvent returns a custom event record. A nil data yields JSON null.
func CustomEvent(siteID, name string, data map[string]interface{}, offset time.Duration) *models.Event {
	ev := &models.Event{
		ID:        nextID(),
		Timestamp: BaseTime.Add(offset),
		Type:      models.EventTypeEvent,
		SiteID:    siteID,
		URL:       "/",
		Hostname:  "example.com",
		EventName: strPtr(name),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			panic(err)
		}
		ev.EventData = raw
	}
	return ev
}

// WebVital returns a web vital record.
func WebVital(siteID, metric string, value float64, offset time.Duration) *models.Event {
	return &models.Event{
		ID:          nextID(),
		Timestamp:   BaseTime.Add(offset),
		Type:        models.EventTypeWebVital,
		SiteID:      siteID,
		URL:         "/",
		Hostname:    "example.com",
		MetricName:  strPtr(metric),
		MetricValue: &value,
		MetricID:    strPtr("v1-" + metric),
		MetricLabel: strPtr("web-vital"),
	}
}
