// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/kvstore"
)

// openStore opens the configured backend. The second return value is a
// maintenance service to supervise, or nil when the backend needs none.
func openStore(cfg *config.DatabaseConfig) (database.Store, suture.Service, error) {
	if cfg.Driver == config.DriverBadger {
		store, err := kvstore.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}

	store, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, nil, nil
}
