// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestProps_Endpoint(t *testing.T) {
	tests := []struct {
		name  string
		props Props
		want  string
	}{
		{"defaults", Props{Domain: "example.com"}, "https://example.com/api/track"},
		{"trailing slash", Props{Domain: "example.com/"}, "https://example.com/api/track"},
		{"scheme", Props{Domain: "localhost:8080", Scheme: "http"}, "http://localhost:8080/api/track"},
		{"custom path", Props{Domain: "example.com", APIPath: "/collect"}, "https://example.com/collect"},
		{"path without slash", Props{Domain: "example.com", APIPath: "collect"}, "https://example.com/collect"},
		{"no domain", Props{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.props.Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProvider_SetProps(t *testing.T) {
	tr, _, logs := newRecordingTracker()
	p := NewProvider(tr)

	p.SetProps(Props{Domain: "example.com", Debug: true})
	cfg, ok := tr.Config()
	if !ok || cfg.SiteID != "example.com" || cfg.Endpoint != "https://example.com/api/track" || !cfg.Debug {
		t.Errorf("config = %+v", cfg)
	}

	p.SetProps(Props{SiteID: "site-1", Domain: "example.com"})
	if cfg, _ := tr.Config(); cfg.SiteID != "site-1" {
		t.Errorf("SiteID = %q, want explicit ID to win", cfg.SiteID)
	}

	p.SetProps(Props{})
	if tr.IsConfigured() {
		t.Error("empty props left the tracker configured")
	}
	if !strings.Contains(logs.String(), "analytics disabled") {
		t.Errorf("missing domain not warned: %s", logs.String())
	}
}

func TestProvider_NavigatePathDedupes(t *testing.T) {
	tr, rec, _ := newRecordingTracker()
	p := NewProvider(tr)
	p.SetProps(Props{SiteID: "s1", Domain: "example.com"})

	for _, path := range []string{"/", "/", "/about", "/about", "/"} {
		p.NavigatePath(path)
	}

	var got []string
	for _, s := range rec.all() {
		got = append(got, decodeSent(t, s).Payload["url"].(string))
	}
	if strings.Join(got, ",") != "/,/about,/" {
		t.Errorf("pageviews = %v", got)
	}
}

func TestProvider_DisableAutoPageView(t *testing.T) {
	tr, rec, _ := newRecordingTracker()
	p := NewProvider(tr)
	p.SetProps(Props{SiteID: "s1", Domain: "example.com", DisableAutoPageView: true})

	p.NavigatePath("/pricing")
	p.ReportWebVital(Metric{Name: "FID", Value: 3})

	sends := rec.all()
	if len(sends) != 1 || decodeSent(t, sends[0]).Type != "webvital" {
		t.Errorf("sends = %d, want only the web vital", len(sends))
	}
}

func TestProvider_Run(t *testing.T) {
	tr, rec, _ := newRecordingTracker()
	p := NewProvider(tr)
	p.SetProps(Props{SiteID: "s1", Domain: "example.com"})

	paths := make(chan string, 2)
	vitals := make(chan Metric, 1)
	paths <- "/"
	paths <- "/docs"
	vitals <- Metric{Name: "TTFB", Value: 120, ID: "v1", Label: "web-vital"}
	close(paths)
	close(vitals)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background(), paths, vitals)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after both channels closed")
	}

	counts := map[string]int{}
	for _, s := range rec.all() {
		counts[decodeSent(t, s).Type]++
	}
	if counts["pageview"] != 2 || counts["webvital"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestProvider_RunStopsOnCancel(t *testing.T) {
	tr, _, _ := newRecordingTracker()
	p := NewProvider(tr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, make(chan string), nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run ignored cancellation")
	}
}

func TestProvider_PageViewBeforeConfigureIsDropped(t *testing.T) {
	tr, rec, _ := newRecordingTracker()
	p := NewProvider(tr)

	p.NavigatePath("/early")
	p.SetProps(Props{SiteID: "s1", Domain: "example.com"})
	p.NavigatePath("/later")

	sends := rec.all()
	if len(sends) != 1 || decodeSent(t, sends[0]).Payload["url"] != "/later" {
		t.Errorf("sends = %d, want only /later", len(sends))
	}
}
