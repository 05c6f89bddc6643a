// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package kvstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
)

const (
	keyPrefix = "ev/"

	// DefaultGCInterval is how often Serve runs value log GC.
	DefaultGCInterval = 10 * time.Minute
	gcDiscardRatio    = 0.5
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("badger store is closed")

// BadgerStore implements database.Store on BadgerDB.
//
// Keys are "ev/" + uint16 length + siteID + big-endian micros + id, so a
// reverse prefix scan yields a site's records newest first with the same
// id tie-break as the SQL backends.
type BadgerStore struct {
	db         *badger.DB
	inMemory   bool
	gcInterval time.Duration

	mu     sync.RWMutex
	closed bool
}

// Open opens a BadgerDB directory. cfg.Path ":memory:" runs fully in memory.
func Open(cfg *config.DatabaseConfig) (*BadgerStore, error) {
	inMemory := cfg.Path == ":memory:"

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.ValueLogFileSize = 64 << 20
	}
	opts.SyncWrites = !inMemory
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, database.NewStoreError("open badger", database.CodeConnection, err)
	}

	logging.Info().Str("path", cfg.Path).Bool("in_memory", inMemory).Msg("Badger store ready")
	return &BadgerStore{db: db, inMemory: inMemory, gcInterval: DefaultGCInterval}, nil
}

func sitePrefix(siteID string) []byte {
	b := make([]byte, 0, len(keyPrefix)+2+len(siteID))
	b = append(b, keyPrefix...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(siteID)))
	return append(b, siteID...)
}

func eventKey(ev *models.Event) []byte {
	k := sitePrefix(ev.SiteID)
	k = binary.BigEndian.AppendUint64(k, uint64(ev.Timestamp.UTC().UnixMicro()))
	return append(k, ev.ID...)
}

func (s *BadgerStore) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// CreateEvent writes one record in its own transaction.
func (s *BadgerStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	start := time.Now()
	err := s.createEvent(ctx, ev)
	metrics.RecordStorageOperation(config.DriverBadger, "create", time.Since(start), err)
	return err
}

func (s *BadgerStore) createEvent(ctx context.Context, ev *models.Event) error {
	if !ev.HasOnlyVariantFields() {
		return database.NewStoreError("create event", database.CodeInvalid, database.ErrVariantLeak)
	}
	if len(ev.SiteID) > 0xFFFF {
		return database.NewStoreError("create event", database.CodeInvalid, fmt.Errorf("site id too long"))
	}
	if err := ctx.Err(); err != nil {
		return database.NewStoreError("create event", database.CodeWrite, err)
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return database.NewStoreError("create event", database.CodeEncode, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return database.NewStoreError("create event", database.CodeConnection, err)
	}

	key := eventKey(ev)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
	if errors.Is(err, errDuplicate) {
		return database.NewStoreError("create event", database.CodeInvalid, err)
	}
	if err != nil {
		return database.NewStoreError("create event", database.CodeWrite, err)
	}
	return nil
}

var errDuplicate = errors.New("duplicate event key")

// ListEvents scans the site's key range in reverse.
func (s *BadgerStore) ListEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error) {
	start := time.Now()
	events, err := s.listEvents(ctx, siteID, database.ClampLimit(limit))
	metrics.RecordStorageOperation(config.DriverBadger, "list", time.Since(start), err)
	return events, err
}

func (s *BadgerStore) listEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, database.NewStoreError("list events", database.CodeConnection, err)
	}

	events := make([]models.Event, 0, limit)
	prefix := sitePrefix(siteID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		opts.PrefetchSize = limit
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the largest key <= the seek key.
		seek := append(append([]byte{}, prefix...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(events) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var ev models.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return err
			}
			// RawMessage decodes JSON null as the literal bytes.
			if string(ev.EventData) == "null" {
				ev.EventData = nil
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, database.NewStoreError("list events", database.CodeRead, err)
	}
	return events, nil
}

// Ping reports whether the store is open.
func (s *BadgerStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return database.NewStoreError("ping", database.CodeConnection, err)
	}
	if s.db.IsClosed() {
		return database.NewStoreError("ping", database.CodeConnection, ErrClosed)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Serve runs value log GC until ctx is cancelled. It implements
// suture.Service so the supervisor can own the loop.
func (s *BadgerStore) Serve(ctx context.Context) error {
	if s.inMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.runGC(); err != nil {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

func (s *BadgerStore) runGC() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// String identifies the service in supervisor logs.
func (s *BadgerStore) String() string {
	return "badger-gc"
}

var _ database.Store = (*BadgerStore)(nil)
