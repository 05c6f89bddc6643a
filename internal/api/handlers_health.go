// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sitepulse/internal/models"
)

const healthPingTimeout = 2 * time.Second

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// Health handles GET /api/health. It always answers 200 so orchestration
// keeps the process alive while storage recovers; Status says "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp, storageOK := h.healthSnapshot(r.Context())
	resp.Status = statusHealthy
	if !storageOK {
		resp.Status = statusDegraded
	}
	respondJSON(w, http.StatusOK, resp)
}

// HealthReady handles GET /api/health/ready: 503 until storage answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp, storageOK := h.healthSnapshot(r.Context())
	status := http.StatusOK
	resp.Status = statusReady
	if !storageOK {
		status = http.StatusServiceUnavailable
		resp.Status = statusNotReady
	}
	respondJSON(w, status, resp)
}

func (h *Handler) healthSnapshot(ctx context.Context) (models.HealthResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	storageOK := h.store != nil && h.store.Ping(ctx) == nil
	resp := models.HealthResponse{
		Storage: "unavailable",
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	}
	if storageOK {
		resp.Storage = "ok"
	}

	switch p := h.eventPublisher.(type) {
	case nil:
		resp.EventBus = "disabled"
	case breakerReporter:
		resp.EventBus = p.BreakerState()
	default:
		resp.EventBus = "enabled"
	}

	if h.wsHub != nil {
		resp.LiveConns = h.wsHub.GetClientCount()
	}
	return resp, storageOK
}
