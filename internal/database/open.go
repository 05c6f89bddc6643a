// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"fmt"

	"github.com/tomtom215/sitepulse/internal/config"
)

// Open returns the SQL-backed Store named by cfg.Driver. The badger driver
// lives in package kvstore and is selected by the caller.
func Open(cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverDuckDB, "":
		return NewDuckDB(cfg)
	case config.DriverSQLite:
		return NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// CloseStore closes s and logs a failure instead of returning it.
func CloseStore(s Store) {
	closeWithLog(s, "store")
}
