// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package ingest

// Client-facing messages. They are part of the public API contract, so
// trackers in the wild may match on them.
const (
	MsgInvalidJSON      = "Invalid JSON payload"
	MsgInvalidBody      = "Invalid request body"
	MsgInvalidSiteID    = "Missing or invalid siteId"
	MsgInvalidEventType = "Invalid event type"
	MsgInvalidPayload   = "Invalid payload structure"
	MsgInvalidMeta      = "Invalid meta structure"
	MsgUnknownEventType = "Unknown event type"
)

// ParseError means the request body was not valid JSON (or could not be
// read). It is reported separately from field validation failures.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return MsgInvalidJSON
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is a rejected envelope. Message is safe to return to the
// submitting client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
