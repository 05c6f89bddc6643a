// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import "testing"

func TestTrack_UsesDefault(t *testing.T) {
	tr, rec, _ := newRecordingTracker()
	SetDefault(tr)
	t.Cleanup(func() { SetDefault(nil) })

	Track("before-config", nil)
	if len(rec.all()) != 0 {
		t.Fatal("unconfigured default sent an event")
	}

	NewProvider(nil).SetProps(Props{SiteID: "s1", Domain: "example.com"})
	Track("signup", map[string]interface{}{"plan": "pro"})

	sends := rec.all()
	if len(sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(sends))
	}
	env := decodeSent(t, sends[0])
	if env.Payload["name"] != "signup" || env.SiteID != "s1" {
		t.Errorf("envelope = %+v", env)
	}
	if Default() != tr {
		t.Error("Default() did not return the installed tracker")
	}
}
