// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/tracker"
	"github.com/tomtom215/sitepulse/internal/validation"
)

const version = "0.1.0"

const (
	defaultEndpoint = "http://localhost:8080/api/track"
	defaultServer   = "http://localhost:8080"
)

type rootOptions struct {
	endpoint string
	siteID   string
	debug    bool
	timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sitepulse",
		Short: "Send and inspect SitePulse telemetry",
		Long: `SitePulse CLI

Records pageviews, custom events and web vitals against a SitePulse
ingestion endpoint, and lists what a site has collected.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if opts.debug {
				level = "debug"
			}
			logging.Init(logging.Config{
				Level:  level,
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", envOr("SITEPULSE_ENDPOINT", defaultEndpoint), "Ingestion endpoint URL")
	cmd.PersistentFlags().StringVar(&opts.siteID, "site", os.Getenv("SITEPULSE_SITE_ID"), "Site identifier")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Maximum time to wait for delivery")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate(fmt.Sprintf("SitePulse version %s\n", version))

	cmd.AddCommand(newTrackCommand(opts))
	cmd.AddCommand(newEventsCommand(opts))
	return cmd
}

// newTracker validates the target and returns a configured tracker whose
// meta reflects path and the endpoint host.
func (o *rootOptions) newTracker(path string) (*tracker.Tracker, error) {
	target := validation.TrackerTarget{SiteID: o.siteID, Endpoint: o.endpoint}
	if verr := validation.ValidateStruct(&target); verr != nil {
		return nil, fmt.Errorf("invalid target: %s", verr.First())
	}

	var host string
	if u, err := url.Parse(o.endpoint); err == nil {
		host = u.Hostname()
	}

	t := tracker.New(tracker.WithLocation(tracker.StaticLocation{URL: path, Host: host}))
	t.Configure(tracker.Config{SiteID: o.siteID, Endpoint: o.endpoint, Debug: o.debug})
	return t, nil
}

// flush waits for queued sends up to the configured timeout.
func (o *rootOptions) flush(ctx context.Context, t *tracker.Tracker) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if err := t.Close(ctx); err != nil {
		return fmt.Errorf("delivery did not finish: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
