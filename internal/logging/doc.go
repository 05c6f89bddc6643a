// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package logging is the zerolog-based structured logging layer shared by
// the server, the event bus and the tracker SDK.
//
// Call Init once at startup, then use the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("site_id", id).Msg("event accepted")
//
// Request-scoped logs go through Ctx, which adds request_id and
// correlation_id when the API middleware has put them on the context:
//
//	logging.Ctx(r.Context()).Warn().Msg("auth check skipped")
//
// Two adapters let third-party libraries write into the same sink:
// SlogHandler (log/slog, used by the suture supervisor) and
// WatermillAdapter (watermill.LoggerAdapter, used by the event bus).
package logging
