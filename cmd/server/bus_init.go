// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/sitepulse/internal/cache"
	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/eventprocessor"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/models"
	"github.com/tomtom215/sitepulse/internal/supervisor/services"
)

// Sink names used on the router.
const (
	sinkLiveFeed        = "live-feed"
	sinkCacheInvalidate = "cache-invalidate"
)

// BusComponents holds the event bus pieces main wires together: the
// breaker-guarded publisher for the track handler and the sinks the
// consumer router fans out to.
type BusComponents struct {
	bus       *eventprocessor.Bus
	publisher *eventprocessor.Publisher
	logger    watermill.LoggerAdapter
	sinks     map[string]eventprocessor.EventSink
}

// InitEventBus opens the configured backend. It returns nil, nil when the
// bus is disabled; ingestion then stores events without fan-out.
func InitEventBus(cfg *config.EventBusConfig) (*BusComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Event bus disabled (EVENTBUS_ENABLED=false)")
		return nil, nil
	}

	logger := logging.NewWatermillAdapter()
	bus, err := eventprocessor.NewBus(*cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open event bus: %w", err)
	}

	breaker := eventprocessor.NewCircuitBreaker(eventprocessor.CircuitBreakerConfig{
		Name:             "eventbus-publish",
		MaxRequests:      cfg.BreakerMaxRequests,
		Interval:         cfg.BreakerInterval,
		Timeout:          cfg.BreakerTimeout,
		FailureThreshold: cfg.BreakerFailures,
	})

	logging.Info().
		Str("backend", bus.Backend).
		Str("topic", bus.Topic).
		Msg("Event bus ready")

	return &BusComponents{
		bus:       bus,
		publisher: eventprocessor.NewPublisher(bus.Publisher, bus.Topic, breaker),
		logger:    logger,
		sinks:     make(map[string]eventprocessor.EventSink),
	}, nil
}

// Publisher returns the publisher the track handler uses.
func (c *BusComponents) Publisher() *eventprocessor.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// AddSink registers a consumer for every router the factory builds.
func (c *BusComponents) AddSink(name string, sink eventprocessor.EventSink) {
	c.sinks[name] = sink
}

// RouterFactory builds a router with every registered sink attached.
func (c *BusComponents) RouterFactory() services.RouterFactory {
	return func() (services.RouterRunner, error) {
		router, err := eventprocessor.NewRouter(eventprocessor.DefaultRouterConfig(), c.bus.Subscriber, c.bus.Topic, c.logger)
		if err != nil {
			return nil, err
		}
		for name, sink := range c.sinks {
			if err := router.AddSink(name, sink); err != nil {
				return nil, errors.Join(err, router.Close())
			}
		}
		return router, nil
	}
}

// Close releases the publisher, then the backend.
func (c *BusComponents) Close() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.publisher.Close(), c.bus.Close())
}

// cacheInvalidationSink drops cached analytics for sites that received an
// event. The track handler already invalidates its own cache; this sink
// covers events ingested by other instances sharing a NATS bus.
func cacheInvalidationSink(qc *cache.QueryCache) eventprocessor.EventSink {
	return eventprocessor.EventSinkFunc(func(_ context.Context, ev *models.Event) error {
		qc.InvalidateSite(ev.SiteID)
		return nil
	})
}
