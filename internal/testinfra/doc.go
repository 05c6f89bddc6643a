// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

// Package testinfra provides shared test infrastructure: record fixtures and
// a behavioral suite that every database.Store backend runs.
//
//	func TestDuckDBStore(t *testing.T) {
//	    testinfra.RunStoreSuite(t, func(t *testing.T) database.Store {
//	        s, err := database.NewDuckDB(&config.DatabaseConfig{Path: ":memory:"})
//	        if err != nil {
//	            t.Fatal(err)
//	        }
//	        return s
//	    })
//	}
//
// Each subtest opens its own store, so backends must return an empty store
// from every factory call.
package testinfra
