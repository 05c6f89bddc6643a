// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/logging"
)

const initTimeout = 30 * time.Second

// DuckDBStore is the default Store backend.
type DuckDBStore struct {
	sqlStore
	cfg *config.DatabaseConfig
}

// NewDuckDB opens (or creates) the DuckDB database at cfg.Path and applies
// the events schema.
func NewDuckDB(cfg *config.DatabaseConfig) (*DuckDBStore, error) {
	numThreads := runtime.NumCPU()
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	// Extension autoloading is off so startup never reaches the network.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, NewStoreError("open duckdb", CodeConnection, err)
	}

	// An in-memory DuckDB lives and dies with its only connection.
	if cfg.Path == ":memory:" {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	}

	store := &DuckDBStore{
		sqlStore: sqlStore{conn: conn, backend: config.DriverDuckDB},
		cfg:      cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	if err := store.initSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, NewStoreError("init duckdb", CodeConnection, err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", maxMemory).
		Msg("DuckDB store ready")
	return store, nil
}
