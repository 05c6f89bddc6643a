// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package services adapts SitePulse components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into Serve with a
// bounded drain. LiveFeedService names the websocket hub. EventRouterService
// rebuilds the watermill router on every restart through a RouterFactory,
// because a closed router cannot be run again.
//
// The query cache, the site limiter and the Badger store implement
// Serve and String themselves and are added to the tree directly.
package services
