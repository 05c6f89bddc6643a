// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

/*
Package websocket pushes accepted events to live dashboards.

Each Client subscribes to exactly one site when it connects through
GET /api/live?siteId=. The Hub receives events from the event bus (it
implements the bus sink interface through HandleEvent) and forwards each one
only to the clients of that event's site.

	event bus ──HandleEvent──▶ Hub ──site filter──▶ Client ──▶ browser

Frames are JSON objects of the form:

	{"type": "event", "data": { ...persisted event record... }}

Clients may send {"type": "ping"} and receive {"type": "pong"}. Transport
level pings run every 54 seconds with a 60 second pong deadline.

Backpressure:

Broadcasts never block the bus. When the hub queue is full the event is
dropped from the live feed, and a client whose send buffer is full is
disconnected. Both cases are counted in websocket_errors_total. Storage is
unaffected: dashboards can always reload from /api/analytics.

Lifecycle:

RunWithContext is supervised. On shutdown it closes every client and closes
Done so handlers and read pumps stop waiting on the hub.
*/
package websocket
