// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sitepulse/internal/logging"
)

// RouterRunner is satisfied by *eventprocessor.Router.
type RouterRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router with its sinks attached. A closed
// watermill router cannot be run again, so every restart needs a new one.
type RouterFactory func() (RouterRunner, error)

// EventRouterService runs the bus consumer that fans accepted events out
// to the live feed and to cache invalidation.
//
//  1. Build a router from the factory
//  2. Run it until ctx is canceled or it fails
//  3. Close it within shutdownTimeout
//
// A factory or Run error is returned so suture restarts the service with
// backoff. Ingestion does not depend on this service.
type EventRouterService struct {
	factory         RouterFactory
	shutdownTimeout time.Duration
	name            string
}

// NewEventRouterService wraps factory with a 10s shutdown timeout.
func NewEventRouterService(factory RouterFactory) *EventRouterService {
	return NewEventRouterServiceWithTimeout(factory, defaultShutdownTimeout)
}

// NewEventRouterServiceWithTimeout wraps factory with a custom shutdown
// timeout.
func NewEventRouterServiceWithTimeout(factory RouterFactory, shutdownTimeout time.Duration) *EventRouterService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &EventRouterService{
		factory:         factory,
		shutdownTimeout: shutdownTimeout,
		name:            "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- router.Run(ctx) }()

	select {
	case err := <-runErr:
		closeRouter(router, s.shutdownTimeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = errors.New("router stopped unexpectedly")
		}
		return fmt.Errorf("event router: %w", err)

	case <-ctx.Done():
		closeRouter(router, s.shutdownTimeout)
		select {
		case <-runErr:
		case <-time.After(s.shutdownTimeout):
			logging.Warn().Str("service", s.name).Msg("Event router did not stop within timeout")
		}
		return ctx.Err()
	}
}

func closeRouter(router RouterRunner, timeout time.Duration) {
	done := make(chan error, 1)
	go func() { done <- router.Close() }()

	select {
	case err := <-done:
		if err != nil {
			logging.Warn().Err(err).Msg("Event router close error")
		}
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("Event router close timed out")
	}
}

func (s *EventRouterService) String() string {
	return s.name
}
