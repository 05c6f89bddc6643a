// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"context"
	"time"

	"github.com/tomtom215/sitepulse/internal/cache"
	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/ingest"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/models"
	ws "github.com/tomtom215/sitepulse/internal/websocket"
)

const defaultMaxBodyBytes = 64 << 10

// EventPublisher receives every accepted record after the response is
// decided. Implementations must not assume the client is still connected.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *models.Event) error
}

// breakerReporter is implemented by publishers guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// Handler serves the public HTTP surface. Only store is required; cache,
// publisher, hub and site limiter are optional and set after construction.
type Handler struct {
	store          database.Store
	storageBackend string
	normalizer     *ingest.Normalizer
	maxBodyBytes   int64
	allowedOrigins []string
	startTime      time.Time

	cache          *cache.QueryCache
	eventPublisher EventPublisher
	wsHub          *ws.Hub
	siteLimiter    *SiteLimiter
}

// NewHandler creates a handler over store. cfg may be nil in tests.
func NewHandler(store database.Store, cfg *config.Config) *Handler {
	h := &Handler{
		store:        store,
		normalizer:   ingest.NewNormalizer(),
		maxBodyBytes: defaultMaxBodyBytes,
		startTime:    time.Now(),
	}
	if cfg != nil {
		h.storageBackend = cfg.Database.Driver
		if cfg.Server.MaxBodyBytes > 0 {
			h.maxBodyBytes = cfg.Server.MaxBodyBytes
		}
		h.allowedOrigins = cfg.WebSocket.AllowedOrigins
	}
	return h
}

// SetCache enables query caching.
func (h *Handler) SetCache(c *cache.QueryCache) {
	h.cache = c
}

// SetEventPublisher enables post-ingest publication.
func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.eventPublisher = p
}

// SetHub enables the live feed endpoint.
func (h *Handler) SetHub(hub *ws.Hub) {
	h.wsHub = hub
}

// SetSiteLimiter enables per-site ingest limiting. nil disables it.
func (h *Handler) SetSiteLimiter(l *SiteLimiter) {
	h.siteLimiter = l
}

// publishAccepted hands ev to the bus on its own goroutine. The request
// context is detached because the response has already been written.
func (h *Handler) publishAccepted(ctx context.Context, ev *models.Event) {
	if h.eventPublisher == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := h.eventPublisher.PublishEvent(ctx, ev); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("event_id", ev.ID).Msg("Failed to publish accepted event")
		}
	}()
}
