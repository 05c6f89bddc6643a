// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
)

// schemaStatements is plain enough to run unchanged on DuckDB and SQLite.
// Timestamps are Unix microseconds so both engines order them identically.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id           VARCHAR PRIMARY KEY,
		ts_us        BIGINT  NOT NULL,
		event_type   VARCHAR NOT NULL CHECK (event_type IN ('pageview', 'event', 'webvital')),
		site_id      VARCHAR NOT NULL,
		client_ts_us BIGINT,
		url          VARCHAR NOT NULL DEFAULT '',
		hostname     VARCHAR NOT NULL DEFAULT '',
		page_url     VARCHAR,
		event_name   VARCHAR,
		event_data   VARCHAR,
		metric_name  VARCHAR,
		metric_value DOUBLE,
		metric_id    VARCHAR,
		metric_label VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_site_ts ON events (site_id, ts_us)`,
}

const insertEventSQL = `INSERT INTO events (
	id, ts_us, event_type, site_id, client_ts_us, url, hostname,
	page_url, event_name, event_data, metric_name, metric_value, metric_id, metric_label
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const listEventsSQL = `SELECT
	id, ts_us, event_type, site_id, client_ts_us, url, hostname,
	page_url, event_name, event_data, metric_name, metric_value, metric_id, metric_label
FROM events
WHERE site_id = ?
ORDER BY ts_us DESC, id DESC
LIMIT ?`

// sqlStore implements Store over database/sql. DuckDBStore and SQLiteStore
// embed it and differ only in how the connection is opened.
type sqlStore struct {
	conn    *sql.DB
	backend string

	// writeCode maps a driver error from INSERT to an error code. Nil
	// means every write failure is CodeWrite.
	writeCode func(error) string
}

func (s *sqlStore) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateEvent inserts one row in a single statement.
func (s *sqlStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	start := time.Now()
	if !ev.HasOnlyVariantFields() {
		return NewStoreError("create event", CodeInvalid, ErrVariantLeak)
	}

	var eventData interface{}
	if ev.EventData != nil {
		eventData = string(ev.EventData)
	}

	_, err := s.conn.ExecContext(ctx, insertEventSQL,
		ev.ID,
		ev.Timestamp.UTC().UnixMicro(),
		string(ev.Type),
		ev.SiteID,
		nullableMicros(ev.ClientTimestamp),
		ev.URL,
		ev.Hostname,
		nullableString(ev.PageURL),
		nullableString(ev.EventName),
		eventData,
		nullableString(ev.MetricName),
		nullableFloat(ev.MetricValue),
		nullableString(ev.MetricID),
		nullableString(ev.MetricLabel),
	)
	metrics.RecordStorageOperation(s.backend, "create", time.Since(start), err)
	if err != nil {
		code := CodeWrite
		if s.writeCode != nil {
			code = s.writeCode(err)
		}
		return NewStoreError("create event", code, err)
	}
	return nil
}

// ListEvents returns the newest events for siteID first.
func (s *sqlStore) ListEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error) {
	start := time.Now()
	events, err := s.listEvents(ctx, siteID, ClampLimit(limit))
	metrics.RecordStorageOperation(s.backend, "list", time.Since(start), err)
	return events, err
}

func (s *sqlStore) listEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error) {
	rows, err := s.conn.QueryContext(ctx, listEventsSQL, siteID, limit)
	if err != nil {
		return nil, NewStoreError("list events", CodeRead, err)
	}
	defer closeQuietly(rows)

	events := make([]models.Event, 0, limit)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, NewStoreError("list events", CodeRead, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError("list events", CodeRead, err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var ev models.Event
	var tsMicros int64
	var eventType string
	var clientTS sql.NullInt64
	var pageURL, eventName, eventData sql.NullString
	var metricName, metricID, metricLabel sql.NullString
	var metricValue sql.NullFloat64
	if err := rows.Scan(
		&ev.ID, &tsMicros, &eventType, &ev.SiteID, &clientTS, &ev.URL, &ev.Hostname,
		&pageURL, &eventName, &eventData, &metricName, &metricValue, &metricID, &metricLabel,
	); err != nil {
		return ev, err
	}

	ev.Timestamp = time.UnixMicro(tsMicros).UTC()
	ev.Type = models.EventType(eventType)
	if clientTS.Valid {
		t := time.UnixMicro(clientTS.Int64).UTC()
		ev.ClientTimestamp = &t
	}
	ev.PageURL = stringPtr(pageURL)
	ev.EventName = stringPtr(eventName)
	if eventData.Valid {
		ev.EventData = []byte(eventData.String)
	}
	ev.MetricName = stringPtr(metricName)
	if metricValue.Valid {
		v := metricValue.Float64
		ev.MetricValue = &v
	}
	ev.MetricID = stringPtr(metricID)
	ev.MetricLabel = stringPtr(metricLabel)
	return ev, nil
}

// Ping checks the connection.
func (s *sqlStore) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return NewStoreError("ping", CodeConnection, err)
	}
	return nil
}

// Close releases the pool.
func (s *sqlStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func nullableString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableMicros(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMicro()
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
