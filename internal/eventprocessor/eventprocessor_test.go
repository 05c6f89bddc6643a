// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sitepulse/internal/config"
	"github.com/tomtom215/sitepulse/internal/models"
	"github.com/tomtom215/sitepulse/internal/testinfra"
)

func memoryBus(t *testing.T) *Bus {
	t.Helper()
	bus, err := NewBus(config.EventBusConfig{Backend: config.BusMemory, Topic: "test.events"}, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func fastRouterConfig() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	cfg.CloseTimeout = time.Second
	return cfg
}

type collectingSink struct {
	mu     sync.Mutex
	events []*models.Event
	got    chan struct{}
}

func newCollectingSink() *collectingSink {
	return &collectingSink{got: make(chan struct{}, 16)}
}

func (s *collectingSink) HandleEvent(_ context.Context, ev *models.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	s.got <- struct{}{}
	return nil
}

func (s *collectingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func startRouter(t *testing.T, r *Router) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestNewBus_UnknownBackend(t *testing.T) {
	_, err := NewBus(config.EventBusConfig{Backend: "kafka"}, watermill.NopLogger{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("NewBus() error = %v, want ErrUnknownBackend", err)
	}
}

func TestEventMessage_RoundTrip(t *testing.T) {
	ev := testinfra.WebVital("site-1", "LCP", 2400, time.Second)

	msg, err := NewEventMessage(ev)
	if err != nil {
		t.Fatalf("NewEventMessage() error = %v", err)
	}
	if msg.UUID != ev.ID {
		t.Errorf("UUID = %q, want %q", msg.UUID, ev.ID)
	}
	if msg.Metadata.Get(MetadataSiteID) != "site-1" || msg.Metadata.Get(MetadataEventType) != "webvital" {
		t.Errorf("metadata = %v", msg.Metadata)
	}

	got, err := DecodeEvent(msg)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if got.ID != ev.ID || *got.MetricName != "LCP" || *got.MetricValue != 2400 {
		t.Errorf("decoded = %+v", got)
	}
	if got.EventData != nil {
		t.Errorf("EventData = %s, want nil", got.EventData)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	if _, err := DecodeEvent(message.NewMessage("x", []byte("{not json"))); err == nil {
		t.Error("DecodeEvent() should fail on invalid payload")
	}
}

func TestRouter_FansOutToEverySink(t *testing.T) {
	bus := memoryBus(t)
	router, err := NewRouter(fastRouterConfig(), bus.Subscriber, bus.Topic, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	a, b := newCollectingSink(), newCollectingSink()
	if err := router.AddSink("a", a); err != nil {
		t.Fatal(err)
	}
	if err := router.AddSink("b", b); err != nil {
		t.Fatal(err)
	}
	if err := router.AddSink("a", a); err == nil {
		t.Error("duplicate sink name should fail")
	}
	if len(router.Sinks()) != 2 {
		t.Errorf("Sinks() = %v", router.Sinks())
	}
	startRouter(t, router)

	pub := NewPublisher(bus.Publisher, bus.Topic, nil)
	ev := testinfra.PageView("site-1", "/pricing", 0)
	if err := pub.PublishEvent(context.Background(), ev); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	a.wait(t)
	b.wait(t)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.events[0].ID != ev.ID || *a.events[0].PageURL != "/pricing" {
		t.Errorf("sink a got %+v", a.events[0])
	}
}

func TestRouter_RetriesFailingSink(t *testing.T) {
	bus := memoryBus(t)
	router, err := NewRouter(fastRouterConfig(), bus.Subscriber, bus.Topic, watermill.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	done := make(chan struct{})
	_ = router.AddSink("flaky", EventSinkFunc(func(context.Context, *models.Event) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))
	startRouter(t, router)

	pub := NewPublisher(bus.Publisher, bus.Topic, nil)
	if err := pub.PublishEvent(context.Background(), testinfra.PageView("s", "/", 0)); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("sink never succeeded, calls = %d", calls.Load())
	}
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.calls++
	return errors.New("nats down")
}

func (p *failingPublisher) Close() error { return nil }

func TestPublisher_CircuitOpens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test-publisher",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	})
	fp := &failingPublisher{}
	pub := NewPublisher(fp, "t", cb)

	for i := 0; i < 2; i++ {
		if err := pub.PublishEvent(context.Background(), testinfra.PageView("s", "/", 0)); err == nil {
			t.Fatal("expected publish error")
		}
	}
	if pub.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", pub.BreakerState())
	}

	err := pub.PublishEvent(context.Background(), testinfra.PageView("s", "/", 0))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if fp.calls != 2 {
		t.Errorf("underlying calls = %d, want 2", fp.calls)
	}
}

func TestPublisher_Closed(t *testing.T) {
	pub := NewPublisher(&failingPublisher{}, "t", nil)
	if pub.BreakerState() != "closed" {
		t.Errorf("BreakerState() without breaker = %q", pub.BreakerState())
	}
	_ = pub.Close()
	if err := pub.PublishEvent(context.Background(), testinfra.PageView("s", "/", 0)); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("error = %v, want ErrPublisherClosed", err)
	}
}

func TestStateValue(t *testing.T) {
	tests := map[gobreaker.State]float64{
		gobreaker.StateClosed:   0,
		gobreaker.StateHalfOpen: 1,
		gobreaker.StateOpen:     2,
	}
	for state, want := range tests {
		if got := stateValue(state); got != want {
			t.Errorf("stateValue(%s) = %v, want %v", state, got, want)
		}
	}
}
