// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sitepulse/internal/tracker"
)

func newTrackCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Send a pageview, custom event or web vital",
	}
	cmd.AddCommand(newTrackPageViewCommand(opts))
	cmd.AddCommand(newTrackEventCommand(opts))
	cmd.AddCommand(newTrackWebVitalCommand(opts))
	return cmd
}

func newTrackPageViewCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pageview <path>",
		Short: "Record a view of path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTracker(args[0])
			if err != nil {
				return err
			}
			t.TrackPageView(args[0])
			if err := opts.flush(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pageview %s sent for %s\n", args[0], opts.siteID)
			return nil
		},
	}
}

func newTrackEventCommand(opts *rootOptions) *cobra.Command {
	var (
		rawData string
		path    string
	)

	cmd := &cobra.Command{
		Use:   "event <name>",
		Short: "Record a custom event",
		Example: `  sitepulse track event signup --data '{"plan":"pro"}'
  sitepulse track event download --url /docs/install`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data map[string]interface{}
			if rawData != "" {
				if err := json.Unmarshal([]byte(rawData), &data); err != nil {
					return fmt.Errorf("--data must be a JSON object: %w", err)
				}
			}

			t, err := opts.newTracker(path)
			if err != nil {
				return err
			}
			t.TrackEvent(args[0], data)
			if err := opts.flush(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "event %s sent for %s\n", args[0], opts.siteID)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawData, "data", "", "Event data as a JSON object")
	cmd.Flags().StringVar(&path, "url", "", "Path reported as meta.url")
	return cmd
}

func newTrackWebVitalCommand(opts *rootOptions) *cobra.Command {
	var (
		metricID string
		label    string
		path     string
	)

	cmd := &cobra.Command{
		Use:   "webvital <name> <value>",
		Short: "Record a web vital measurement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("value %q is not a number", args[1])
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return fmt.Errorf("value %q is not a finite number", args[1])
			}

			t, err := opts.newTracker(path)
			if err != nil {
				return err
			}
			t.TrackWebVital(tracker.Metric{Name: args[0], Value: value, ID: metricID, Label: label})
			if err := opts.flush(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webvital %s=%s sent for %s\n", args[0], args[1], opts.siteID)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricID, "id", "", "Metric ID")
	cmd.Flags().StringVar(&label, "label", "web-vital", "Metric label")
	cmd.Flags().StringVar(&path, "url", "", "Path reported as meta.url")
	return cmd
}
