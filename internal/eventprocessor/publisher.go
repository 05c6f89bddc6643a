// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
)

// Publisher sends accepted events to the bus topic through a circuit
// breaker. It does not own the underlying publisher; Bus.Close releases it.
type Publisher struct {
	publisher      message.Publisher
	topic          string
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. cb may be nil.
func NewPublisher(pub message.Publisher, topic string, cb *gobreaker.CircuitBreaker[interface{}]) *Publisher {
	return &Publisher{publisher: pub, topic: topic, circuitBreaker: cb}
}

// PublishEvent serializes ev and publishes it. Errors are informational
// for callers: the event is already stored.
func (p *Publisher) PublishEvent(ctx context.Context, ev *models.Event) error {
	msg, err := NewEventMessage(ev)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return p.Publish(msg)
}

// Publish sends one message to the configured topic.
func (p *Publisher) Publish(msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(p.topic, msg)
		})
	} else {
		err = p.publisher.Publish(p.topic, msg)
	}

	circuitOpen := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
	metrics.RecordBusPublish(err, circuitOpen)
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.UUID, err)
	}
	return nil
}

// BreakerState reports "closed", "half-open" or "open". Without a breaker
// it reports "closed".
func (p *Publisher) BreakerState() string {
	if p.circuitBreaker == nil {
		return gobreaker.StateClosed.String()
	}
	return p.circuitBreaker.State().String()
}

// Close makes later Publish calls fail with ErrPublisherClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
