// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/logging"
)

// SQLiteStore is the pure-Go Store backend for builds without CGO.
type SQLiteStore struct {
	sqlStore
}

// NewSQLite opens the SQLite file at cfg.Path in WAL mode.
func NewSQLite(cfg *config.DatabaseConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, NewStoreError("open sqlite", CodeConnection, errors.New("storage path is required"))
	}

	dsn := ":memory:"
	if cfg.Path != ":memory:" {
		dsn = filepath.Clean(cfg.Path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, NewStoreError("open sqlite", CodeConnection, err)
	}

	// Each :memory: connection is its own database, and SQLite has a
	// single writer anyway.
	conn.SetMaxOpenConns(1)

	store := &SQLiteStore{
		sqlStore: sqlStore{conn: conn, backend: config.DriverSQLite, writeCode: sqliteWriteCode},
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	if err := store.initSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, NewStoreError("init sqlite", CodeConnection, err)
	}

	logging.Info().Str("path", cfg.Path).Msg("SQLite store ready")
	return store, nil
}

// sqliteWriteCode reports constraint failures as CodeInvalid.
func sqliteWriteCode(err error) string {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3lib.SQLITE_CONSTRAINT_CHECK,
			sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
			return CodeInvalid
		}
	}
	return CodeWrite
}
