// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package ingest turns an untrusted /api/track request body into a
// models.Event ready for storage.
//
// Parse performs the ordered structural checks and returns either a
// *ParseError (malformed JSON) or a *ValidationError with the exact message
// the client receives. Normalize then switches on the event type and fills
// only that variant's fields. Neither step touches storage.
package ingest
