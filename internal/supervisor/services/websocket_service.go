// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package services

import (
	"context"

	"github.com/tomtom215/sitepulse/internal/logging"
)

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
	GetClientCount() int
}

// LiveFeedService runs the live event hub. The hub already follows the
// Serve contract; the wrapper names it for suture's event log.
type LiveFeedService struct {
	hub  ContextHub
	name string
}

// NewLiveFeedService wraps hub.
func NewLiveFeedService(hub ContextHub) *LiveFeedService {
	return &LiveFeedService{hub: hub, name: "websocket-hub"}
}

// Serve implements suture.Service.
func (s *LiveFeedService) Serve(ctx context.Context) error {
	err := s.hub.RunWithContext(ctx)
	logging.Debug().Str("service", s.name).Int("clients_remaining", s.hub.GetClientCount()).Msg("Live feed stopped")
	return err
}

func (s *LiveFeedService) String() string {
	return s.name
}
