// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package tracker

import (
	"context"
	"strings"
	"sync"
)

// Defaults applied by SetProps.
const (
	DefaultScheme  = "https"
	DefaultAPIPath = "/api/track"
)

// Props are the host-facing settings of a Provider.
type Props struct {
	// SiteID identifies the site. Domain is used when empty.
	SiteID string
	// Domain is the host serving the ingestion endpoint.
	Domain              string
	Scheme              string
	APIPath             string
	Debug               bool
	DisableAutoPageView bool
}

// Endpoint builds scheme://domain/apiPath with defaults applied.
func (p Props) Endpoint() string {
	if p.Domain == "" {
		return ""
	}
	scheme := p.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	apiPath := p.APIPath
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return scheme + "://" + strings.TrimSuffix(p.Domain, "/") + apiPath
}

// Provider binds navigation and metric signals to a Tracker.
type Provider struct {
	tracker *Tracker

	mu       sync.Mutex
	props    Props
	lastPath string
	seen     bool
}

// NewProvider binds to t, or to the package default when t is nil.
func NewProvider(t *Tracker) *Provider {
	if t == nil {
		t = Default()
	}
	return &Provider{tracker: t}
}

// Tracker returns the bound tracker.
func (p *Provider) Tracker() *Tracker { return p.tracker }

// SetProps recomputes the tracker config and pushes it.
func (p *Provider) SetProps(props Props) {
	p.mu.Lock()
	p.props = props
	p.mu.Unlock()

	siteID := props.SiteID
	if siteID == "" {
		siteID = props.Domain
	}
	if siteID == "" {
		p.tracker.logger.Warn().Msg("'domain' is missing or empty, analytics disabled")
	}

	p.tracker.Configure(Config{
		SiteID:   siteID,
		Endpoint: props.Endpoint(),
		Debug:    props.Debug,
	})
}

// Run forwards paths and metrics until ctx is done or both channels close.
// A nil channel counts as closed.
func (p *Provider) Run(ctx context.Context, paths <-chan string, vitals <-chan Metric) {
	for paths != nil || vitals != nil {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			p.pageView(path)
		case m, ok := <-vitals:
			if !ok {
				vitals = nil
				continue
			}
			p.tracker.TrackWebVital(m)
		}
	}
}

// NavigatePath fires a pageview when path differs from the previous call.
func (p *Provider) NavigatePath(path string) {
	p.mu.Lock()
	changed := !p.seen || path != p.lastPath
	p.lastPath = path
	p.seen = true
	p.mu.Unlock()

	if changed {
		p.pageView(path)
	}
}

// ReportWebVital forwards m to the tracker.
func (p *Provider) ReportWebVital(m Metric) {
	p.tracker.TrackWebVital(m)
}

func (p *Provider) pageView(path string) {
	p.mu.Lock()
	disabled := p.props.DisableAutoPageView
	p.mu.Unlock()

	if disabled || path == "" {
		return
	}
	p.tracker.TrackPageView(path)
}
