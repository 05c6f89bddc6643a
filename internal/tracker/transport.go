// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultQueueSize bounds the beacon queue.
const DefaultQueueSize = 256

// Transport delivers an encoded envelope. Send never blocks on the network
// and reports nothing back.
type Transport interface {
	Send(endpoint string, body []byte)
}

type beaconRequest struct {
	endpoint string
	body     []byte
}

// BeaconTransport queues sends for a single background worker. A full
// queue drops the event.
type BeaconTransport struct {
	client *http.Client
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan beaconRequest
	done   chan struct{}
}

// NewBeaconTransport starts the worker. A non-positive size uses
// DefaultQueueSize.
func NewBeaconTransport(client *http.Client, size int, logger zerolog.Logger) *BeaconTransport {
	if client == nil {
		client = http.DefaultClient
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	b := &BeaconTransport{
		client: client,
		logger: logger,
		queue:  make(chan beaconRequest, size),
		done:   make(chan struct{}),
	}
	go b.drain()
	return b
}

// Send enqueues without blocking.
func (b *BeaconTransport) Send(endpoint string, body []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Debug().Str("endpoint", endpoint).Msg("beacon closed, event dropped")
		return
	}
	select {
	case b.queue <- beaconRequest{endpoint: endpoint, body: body}:
	default:
		b.logger.Warn().Int("queue_size", cap(b.queue)).Msg("beacon queue full, event dropped")
	}
}

// Available reports whether Send still accepts events.
func (b *BeaconTransport) Available() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed
}

// Close stops accepting events and waits for the worker to drain the queue.
func (b *BeaconTransport) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *BeaconTransport) drain() {
	defer close(b.done)
	for req := range b.queue {
		post(b.client, req.endpoint, req.body, b.logger)
	}
}

// FetchTransport posts every event from its own goroutine.
type FetchTransport struct {
	client *http.Client
	logger zerolog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewFetchTransport returns a transport using client, or the default client
// when nil. No timeout is added.
func NewFetchTransport(client *http.Client, logger zerolog.Logger) *FetchTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &FetchTransport{client: client, logger: logger}
}

// Send starts the request and returns immediately.
func (f *FetchTransport) Send(endpoint string, body []byte) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		f.logger.Debug().Str("endpoint", endpoint).Msg("transport closed, event dropped")
		return
	}
	f.inflight.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.inflight.Done()
		post(f.client, endpoint, body, f.logger)
	}()
}

// Close waits for in-flight requests until ctx is done.
func (f *FetchTransport) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post sends one envelope. Failures are logged, never retried.
func post(client *http.Client, endpoint string, body []byte, logger zerolog.Logger) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to send data")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Msg("endpoint rejected event")
	}
}
