// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type fakeRouter struct {
	runErr error
	closed atomic.Int32
	stop   chan struct{}
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{stop: make(chan struct{})}
}

func (r *fakeRouter) Run(ctx context.Context) error {
	if r.runErr != nil {
		return r.runErr
	}
	select {
	case <-ctx.Done():
	case <-r.stop:
	}
	return nil
}

func (r *fakeRouter) Close() error {
	if r.closed.Add(1) == 1 {
		close(r.stop)
	}
	return nil
}

func TestEventRouterService_ClosesOnCancel(t *testing.T) {
	router := newFakeRouter()
	svc := NewEventRouterService(func() (RouterRunner, error) { return router, nil })
	cancel, errCh := runService(t, svc)

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := waitResult(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if router.closed.Load() != 1 {
		t.Errorf("Close calls = %d, want 1", router.closed.Load())
	}
}

func TestEventRouterService_FactoryError(t *testing.T) {
	factoryErr := errors.New("subscriber unavailable")
	svc := NewEventRouterService(func() (RouterRunner, error) { return nil, factoryErr })

	if err := svc.Serve(context.Background()); !errors.Is(err, factoryErr) {
		t.Errorf("Serve = %v, want factory error", err)
	}
}

func TestEventRouterService_RunFailureIsReported(t *testing.T) {
	runErr := errors.New("subscribe failed")
	router := newFakeRouter()
	router.runErr = runErr
	svc := NewEventRouterService(func() (RouterRunner, error) { return router, nil })

	err := svc.Serve(context.Background())
	if !errors.Is(err, runErr) {
		t.Errorf("Serve = %v, want run error", err)
	}
	if router.closed.Load() != 1 {
		t.Error("failed router was not closed")
	}
}

func TestEventRouterService_RebuildsOnRestart(t *testing.T) {
	var built atomic.Int32
	svc := NewEventRouterServiceWithTimeout(func() (RouterRunner, error) {
		r := newFakeRouter()
		if built.Add(1) <= 2 {
			r.runErr = errors.New("transient")
		}
		return r, nil
	}, 0)
	if svc.shutdownTimeout != defaultShutdownTimeout {
		t.Errorf("shutdownTimeout = %v", svc.shutdownTimeout)
	}

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	<-sup.ServeBackground(ctx)

	if got := built.Load(); got < 3 {
		t.Errorf("routers built = %d, want a fresh one per restart", got)
	}
}
