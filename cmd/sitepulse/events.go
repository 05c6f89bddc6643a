// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sitepulse/internal/models"
)

func newEventsCommand(opts *rootOptions) *cobra.Command {
	var (
		server string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events <siteId>",
		Short: "List the most recent events of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			resp, err := fetchAnalytics(ctx, server, args[0], limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printEvents(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&server, "server", envOr("SITEPULSE_SERVER", defaultServer), "SitePulse server base URL")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of events to retrieve (server default when 0)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw response")
	return cmd
}

func fetchAnalytics(ctx context.Context, server, siteID string, limit int) (*models.AnalyticsResponse, error) {
	endpoint := strings.TrimSuffix(server, "/") + "/api/analytics/" + url.PathEscape(siteID)
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var out models.AnalyticsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func printEvents(w io.Writer, resp *models.AnalyticsResponse) error {
	if resp.Count == 0 {
		_, err := fmt.Fprintf(w, "No events found for %s\n", resp.SiteID)
		return err
	}

	fmt.Fprintf(w, "%d events for %s\n\n", resp.Count, resp.SiteID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tURL\tDETAIL")
	for i := range resp.Events {
		ev := &resp.Events[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			ev.Timestamp.Local().Format(time.DateTime), ev.Type, ev.URL, eventDetail(ev))
	}
	return tw.Flush()
}

// eventDetail summarizes the variant-specific fields.
func eventDetail(ev *models.Event) string {
	switch ev.Type {
	case models.EventTypePageView:
		if ev.PageURL != nil {
			return *ev.PageURL
		}
	case models.EventTypeEvent:
		if ev.EventName != nil {
			if len(ev.EventData) > 0 && string(ev.EventData) != "{}" {
				return *ev.EventName + " " + string(ev.EventData)
			}
			return *ev.EventName
		}
	case models.EventTypeWebVital:
		if ev.MetricName != nil && ev.MetricValue != nil {
			return *ev.MetricName + "=" + strconv.FormatFloat(*ev.MetricValue, 'f', -1, 64)
		}
	}
	return ""
}
