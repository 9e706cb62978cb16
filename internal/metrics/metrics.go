// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Recommendation outcomes and latency
// - Model training and the model cache
// - Baseline dataset loading
// - Model store maintenance and circuit breakers

var (
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // Training can dominate a request
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
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // ok, invalid_rating, unknown_user, empty_corpus, no_candidates, timeout, canceled, error
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Training Metrics
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Model training duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"algorithm"},
	)

	TrainingEpochs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_epochs_total",
			Help: "Total number of training epochs completed",
		},
		[]string{"algorithm"},
	)

	TrainingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_failures_total",
			Help: "Total number of failed training runs",
		},
		[]string{"algorithm", "kind"},
	)

	// Model Cache Metrics
	ModelCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_requests_total",
			Help: "Model cache lookups by tier and result",
		},
		[]string{"tier", "result"}, // result: "hit", "miss"
	)

	ModelCacheExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "model_cache_expired_total",
			Help: "Total number of expired models swept from the memory tier",
		},
	)

	// Baseline Metrics
	BaselineEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "baseline_entries",
			Help: "Number of ratings in the baseline store",
		},
	)

	BaselineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "baseline_users",
			Help: "Number of distinct users in the baseline store",
		},
	)

	BaselineItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "baseline_items",
			Help: "Number of distinct items in the baseline store",
		},
	)

	BaselineImputed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "baseline_imputed_ratings",
			Help: "Number of baseline ratings replaced by the corpus mean",
		},
	)

	// Dataset Metrics
	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Duration of ratings file reads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	DatasetRowsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_rows_loaded",
			Help: "Rows read by the last successful dataset load",
		},
	)

	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"format"},
	)

	// Model Store Metrics
	ModelStoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_store_gc_runs_total",
			Help: "Total number of model store value-log GC runs",
		},
		[]string{"result"}, // "success", "failure"
	)

	ModelStoreGCDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_store_gc_duration_seconds",
			Help:    "Duration of model store value-log GC in seconds",
			Buckets: prometheus.DefBuckets,
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

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

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

// RecordRateLimitHit records a rate limit rejection
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordDatasetLoad records a ratings file read
func RecordDatasetLoad(format string, duration time.Duration, rows int, err error) {
	DatasetLoadDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err != nil {
		DatasetLoadErrors.WithLabelValues(format).Inc()
		return
	}
	DatasetRowsLoaded.Set(float64(rows))
}

// RecordModelStoreGC records a value-log GC run
func RecordModelStoreGC(duration time.Duration, err error) {
	ModelStoreGCDuration.Observe(duration.Seconds())
	if err != nil {
		ModelStoreGCRuns.WithLabelValues("failure").Inc()
		return
	}
	ModelStoreGCRuns.WithLabelValues("success").Inc()
}

// RecordModelCacheExpired records models swept from the memory tier
func RecordModelCacheExpired(n int) {
	ModelCacheExpired.Add(float64(n))
}

// RecordCircuitBreakerTransition records a breaker state change.
// States use gobreaker's names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes the build version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime sets the uptime gauge from the process start time
func UpdateUptime(started time.Time) {
	AppUptime.Set(time.Since(started).Seconds())
}
