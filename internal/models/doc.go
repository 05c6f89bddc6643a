// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package models defines the wire envelope sent by trackers, the persisted
// Event record and the public API response bodies.
//
// The envelope payload is a tagged union: EventType is the closed set of
// discriminators and Payload is implemented by PageViewPayload,
// CustomEventPayload and WebVitalPayload. Event flattens all variants into
// one record whose populated fields are fully determined by its Type.
package models
