// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/sitepulse/internal/database"
	"github.com/tomtom215/sitepulse/internal/ingest"
	"github.com/tomtom215/sitepulse/internal/logging"
	"github.com/tomtom215/sitepulse/internal/metrics"
	"github.com/tomtom215/sitepulse/internal/models"
)

// Track handles POST /api/track.
//
// One envelope per request. Validation stops at the first failure and
// nothing is written. An accepted envelope is stored synchronously, then
// answered with 202, then published to the event bus.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.rejectSubmission(w, r, &ingest.ParseError{Err: err})
		return
	}

	sub, err := ingest.Parse(body)
	if err != nil {
		h.rejectSubmission(w, r, err)
		return
	}

	if !h.siteLimiter.Allow(sub.SiteID) {
		metrics.RecordRateLimitHit("site")
		metrics.RecordEventRejected("rate_limited")
		respondError(w, http.StatusTooManyRequests, MsgRateLimited)
		return
	}

	ev, err := h.normalizer.Normalize(sub)
	if err != nil {
		h.rejectSubmission(w, r, err)
		return
	}

	if err := h.store.CreateEvent(ctx, ev); err != nil {
		h.respondWriteError(w, r, err)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateSite(ev.SiteID)
	}
	metrics.RecordEventAccepted(string(ev.Type), len(body))

	respondJSON(w, http.StatusAccepted, models.TrackResponse{Message: MsgDataReceived})

	h.publishAccepted(ctx, ev)
}

// TrackPreflight handles OPTIONS /api/track.
func (h *Handler) TrackPreflight(w http.ResponseWriter, _ *http.Request) {
	writePreflight(w, trackAllowMethods, trackAllowHeaders)
}

// rejectSubmission maps parse and validation errors to 400.
func (h *Handler) rejectSubmission(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *ingest.ParseError
	var validationErr *ingest.ValidationError

	switch {
	case errors.As(err, &parseErr):
		metrics.RecordEventRejected("invalid_json")
		logging.Ctx(r.Context()).Debug().Err(parseErr.Err).Msg("rejected unparseable envelope")
		respondError(w, http.StatusBadRequest, ingest.MsgInvalidJSON)

	case errors.As(err, &validationErr):
		metrics.RecordEventRejected("validation")
		logging.Ctx(r.Context()).Debug().Str("reason", validationErr.Message).Msg("rejected envelope")
		respondError(w, http.StatusBadRequest, validationErr.Message)

	default:
		h.respondWriteError(w, r, err)
	}
}

// respondWriteError reports a failed write. Store errors expose only their
// code; the detail stays in the server log.
func (h *Handler) respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	metrics.RecordEventRejected("storage")

	var storeErr *database.StoreError
	if errors.As(err, &storeErr) {
		logging.Ctx(r.Context()).Error().
			Str("code", storeErr.Code).
			Str("op", storeErr.Op).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Failed to store event")
		respondError(w, http.StatusInternalServerError, dbErrorMessagePrefix+storeErr.Code)
		return
	}

	logging.Ctx(r.Context()).Error().Str("error", sanitizeLogValue(err.Error())).Msg("Failed to store event")
	msg := err.Error()
	if msg == "" {
		msg = MsgInternalError
	}
	respondError(w, http.StatusInternalServerError, msg)
}
