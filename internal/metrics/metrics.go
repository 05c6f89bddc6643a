// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - ingestion outcomes
// - storage latency and errors
// - API endpoint latency and throughput
// - query cache efficiency
// - event bus publishing and the live feed

var (
	// Ingestion Metrics
	EventsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_events_accepted_total",
			Help: "Total number of telemetry events persisted",
		},
		[]string{"type"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_events_rejected_total",
			Help: "Total number of telemetry submissions rejected",
		},
		[]string{"reason"}, // invalid_json, validation, rate_limited, storage
	)

	IngestBodyBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitepulse_ingest_body_bytes",
			Help:    "Size of accepted /api/track request bodies",
			Buckets: []float64{64, 128, 256, 512, 1024, 2048, 4096, 16384, 65536},
		},
	)

	// Storage Metrics
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_storage_errors_total",
			Help: "Total number of storage operation errors",
		},
		[]string{"backend", "operation", "code"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"}, // ip, site
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_query_cache_hits_total",
			Help: "Total number of analytics query cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_query_cache_misses_total",
			Help: "Total number of analytics query cache misses",
		},
	)

	// Event Bus Metrics
	BusMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_bus_messages_published_total",
			Help: "Total number of accepted events published to the event bus",
		},
	)

	BusPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_bus_publish_failures_total",
			Help: "Total number of event bus publish failures",
		},
		[]string{"reason"}, // error, circuit_open
	)

	BusMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitepulse_bus_messages_consumed_total",
			Help: "Total number of event bus messages delivered to the live feed",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// coder is satisfied by database.StoreError. Declared here so metrics does
// not import database.
type coder interface {
	error
	ErrorCode() string
}

// RecordStorageOperation records one Store call.
func RecordStorageOperation(backend, operation string, duration time.Duration, err error) {
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		code := "unknown"
		var c coder
		if errors.As(err, &c) {
			code = c.ErrorCode()
		}
		StorageErrors.WithLabelValues(backend, operation, code).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventAccepted counts a persisted event.
func RecordEventAccepted(eventType string, bodyBytes int) {
	EventsAccepted.WithLabelValues(eventType).Inc()
	IngestBodyBytes.Observe(float64(bodyBytes))
}

// RecordEventRejected counts a rejected submission by reason.
func RecordEventRejected(reason string) {
	EventsRejected.WithLabelValues(reason).Inc()
}

// RecordRateLimitHit counts a 429 from the named limiter.
func RecordRateLimitHit(limiter string) {
	APIRateLimitHits.WithLabelValues(limiter).Inc()
}

// RecordCacheLookup counts a query cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordBusPublish records the outcome of one publish attempt.
func RecordBusPublish(err error, circuitOpen bool) {
	switch {
	case err == nil:
		BusMessagesPublished.Inc()
	case circuitOpen:
		BusPublishFailures.WithLabelValues("circuit_open").Inc()
	default:
		BusPublishFailures.WithLabelValues("error").Inc()
	}
}

// RecordCircuitBreakerTransition updates the state gauge and counts the
// transition.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
