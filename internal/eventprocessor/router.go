// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
)

// EventSink consumes accepted events after they are stored. A returned
// error triggers redelivery through the retry middleware.
type EventSink interface {
	HandleEvent(ctx context.Context, ev *models.Event) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev *models.Event) error

// HandleEvent calls f.
func (f EventSinkFunc) HandleEvent(ctx context.Context, ev *models.Event) error {
	return f(ctx, ev)
}

// RouterConfig controls retry and shutdown behavior.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig keeps retries short. Sinks are best-effort views of
// data that is already durable.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Router delivers bus messages to registered sinks. Each sink gets its own
// subscription so every sink sees every event.
type Router struct {
	router     *message.Router
	subscriber message.Subscriber
	topic      string
	logger     watermill.LoggerAdapter
	handlers   map[string]*message.Handler
}

// NewRouter creates a router reading topic from sub.
func NewRouter(cfg RouterConfig, sub message.Subscriber, topic string, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{
		router:     wmRouter,
		subscriber: sub,
		topic:      topic,
		logger:     logger,
		handlers:   make(map[string]*message.Handler),
	}, nil
}

// AddSink registers sink under name. Must be called before Run.
func (r *Router) AddSink(name string, sink EventSink) error {
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("sink %q already registered", name)
	}

	h := r.router.AddConsumerHandler(name, r.topic, r.subscriber, func(msg *message.Message) error {
		ev, err := DecodeEvent(msg)
		if err != nil {
			// Undecodable messages never succeed on retry.
			r.logger.Error("dropping undecodable event", err, watermill.LogFields{"sink": name, "uuid": msg.UUID})
			return nil
		}
		if err := sink.HandleEvent(msg.Context(), ev); err != nil {
			return fmt.Errorf("sink %s: %w", name, err)
		}
		metrics.BusMessagesConsumed.Inc()
		return nil
	})
	r.handlers[name] = h
	return nil
}

// Sinks returns the registered sink names.
func (r *Router) Sinks() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Run blocks until ctx is canceled or the router fails.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router and waits up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
