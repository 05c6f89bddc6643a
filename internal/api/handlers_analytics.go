// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
	"github.com/tomtom215/sitepulse/internal/validation"
)

// Analytics handles GET /api/analytics/{siteId}[?limit=N].
//
// Returns the newest events for the site, at most 100. There is no
// authorization on this endpoint; every call logs that.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.Ctx(ctx)
	logger.Warn().Msg("auth check skipped")

	siteID, ok := siteIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, MsgSiteIDRequired)
		return
	}

	limit := database.MaxListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, MsgInvalidLimit)
			return
		}
		limit = n
	}

	query := validation.AnalyticsQuery{SiteID: siteID, Limit: limit}
	if verr := validation.ValidateStruct(&query); verr != nil {
		respondError(w, http.StatusBadRequest, verr.First())
		return
	}

	events, err := h.listEvents(ctx, query.SiteID, query.Limit)
	if err != nil {
		logger.Error().
			Str("site_id", sanitizeLogValue(siteID)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Failed to list events")
		respondError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, models.NewAnalyticsResponse(query.SiteID, events))
}

// siteIDParam decodes the {siteId} segment. chi matches on RawPath when the
// request carried escapes such as %2F, and then the parameter is still
// escaped.
func siteIDParam(r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "siteId")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return "", false
		}
		raw = decoded
	}
	return validation.NormalizeSiteID(raw)
}

// AnalyticsPreflight handles OPTIONS /api/analytics/{siteId}.
func (h *Handler) AnalyticsPreflight(w http.ResponseWriter, _ *http.Request) {
	writePreflight(w, analyticsAllowMethods, analyticsAllowHeaders)
}

// listEvents reads through the query cache when one is configured.
func (h *Handler) listEvents(ctx context.Context, siteID string, limit int) ([]models.Event, error) {
	if h.cache == nil {
		return h.store.ListEvents(ctx, siteID, limit)
	}

	if events, ok := h.cache.Get(siteID, limit); ok {
		metrics.RecordCacheLookup(true)
		return events, nil
	}
	metrics.RecordCacheLookup(false)

	gen := h.cache.Generation(siteID)
	events, err := h.store.ListEvents(ctx, siteID, limit)
	if err != nil {
		return nil, err
	}
	h.cache.Set(siteID, limit, gen, events)
	return events, nil
}
