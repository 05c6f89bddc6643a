// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package websocket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sitepulse/internal/testinfra"
)

func createTestClient(hub *Hub, siteID string) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		siteID: siteID,
		hub:    hub,
		send:   make(chan Message, sendBuffer),
	}
}

func quietLogs(t *testing.T) {
	t.Helper()
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })
}

func runHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	quietLogs(t)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, errCh
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.clients == nil || hub.broadcast == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("NewHub() left fields uninitialized")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
}

func TestHub_BroadcastFiltersBySite(t *testing.T) {
	hub, _, _ := runHub(t)

	a := createTestClient(hub, "site-a")
	b := createTestClient(hub, "site-b")
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	ev := testinfra.PageView("site-a", "/docs", 0)
	if err := hub.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	select {
	case msg := <-a.send:
		if msg.Type != MessageTypeEvent {
			t.Errorf("Type = %q, want %q", msg.Type, MessageTypeEvent)
		}
	case <-time.After(time.Second):
		t.Fatal("site-a client did not receive event")
	}

	select {
	case msg := <-b.send:
		t.Errorf("site-b client received %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	quietLogs(t)
	hub := NewHub()
	slow := &Client{id: clientIDCounter.Add(1), siteID: "s", hub: hub, send: make(chan Message)}
	hub.clients[slow] = true

	hub.broadcastToClients(siteMessage{siteID: "s", message: Message{Type: MessageTypeEvent}})

	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client's send channel should be closed")
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub, _, _ := runHub(t)
	hub.Unregister <- createTestClient(hub, "s")
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d", hub.GetClientCount())
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		hub, cancel, errCh := runHub(t)
		clients := []*Client{createTestClient(hub, "s"), createTestClient(hub, "s")}
		for _, c := range clients {
			hub.Register <- c
		}
		waitForClients(t, hub, 2)

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("hub did not stop")
		}
		if hub.GetClientCount() != 0 {
			t.Errorf("clients after shutdown = %d", hub.GetClientCount())
		}
		for _, c := range clients {
			if _, ok := <-c.send; ok {
				t.Error("send channel should be closed on shutdown")
			}
		}
	})

	t.Run("deadline", func(t *testing.T) {
		quietLogs(t)
		hub := NewHub()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := hub.RunWithContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want DeadlineExceeded", err)
		}
	})
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %q", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %q", got)
	}
}

func TestHub_BroadcastEvent_QueueFull(t *testing.T) {
	quietLogs(t)
	hub := NewHub()
	ev := testinfra.PageView("s", "/", 0)
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.BroadcastEvent(ev)
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("queued = %d, want %d", len(hub.broadcast), broadcastBuffer)
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"pong"`) || !strings.Contains(string(data), `"data":null`) {
		t.Errorf("MarshalMessage() = %s", data)
	}
}
