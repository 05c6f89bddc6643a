// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"context"

	"github.com/tomtom215/sitepulse/internal/models"
)

// MaxListLimit is the hard cap on a single ListEvents page.
const MaxListLimit = 100

// Store is the persistence collaborator behind the ingestion and query
// endpoints. Implementations must make each CreateEvent atomic; callers
// issue exactly one per accepted envelope and never retry.
type Store interface {
	// CreateEvent persists one record. Failures are *StoreError.
	CreateEvent(ctx context.Context, ev *models.Event) error

	// ListEvents returns up to limit records for siteID ordered by
	// Timestamp descending. limit is clamped to [1, MaxListLimit].
	ListEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error)

	Ping(ctx context.Context) error
	Close() error
}

// ClampLimit applies the MaxListLimit cap. Non-positive values mean "max".
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
