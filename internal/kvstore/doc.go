// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package kvstore implements database.Store on BadgerDB for single-node
// deployments that want neither CGO nor SQL.
//
// Records are JSON values under length-prefixed site keys; ListEvents is a
// reverse prefix scan. BadgerStore also implements suture.Service so the
// supervisor can run periodic value log GC.
package kvstore
