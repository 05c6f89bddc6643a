// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package validation provides struct validation using go-playground/validator
// v10 for request shapes outside the ingestion path: analytics queries, live
// feed subscriptions and CLI targets.
//
// Ingestion bodies are not validated here. Their checks are ordered and each
// failure has a fixed message, which package ingest implements directly.
//
// Example:
//
//	q := validation.AnalyticsQuery{SiteID: siteID, Limit: limit}
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    respondError(w, http.StatusBadRequest, verr.First())
//	    return
//	}
package validation
