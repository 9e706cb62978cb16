// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Recommendation Metrics:
  - recommend_requests_total: Requests by outcome (counter)
    Labels: outcome (ok, invalid_rating, unknown_user, empty_corpus,
    no_candidates, timeout, canceled, error)
  - recommend_duration_seconds: End-to-end latency (histogram)

Training Metrics:
  - training_duration_seconds: Training time (histogram)
    Labels: algorithm
  - training_epochs_total: Epochs completed (counter)
    Labels: algorithm
  - training_failures_total: Failed runs (counter)
    Labels: algorithm, kind

Model Cache Metrics:
  - model_cache_requests_total: Lookups (counter)
    Labels: tier (memory, badger), result (hit, miss)
  - model_cache_expired_total: Models swept from the memory tier (counter)

Baseline and Dataset Metrics:
  - baseline_entries, baseline_users, baseline_items (gauges)
  - baseline_imputed_ratings: Ratings replaced by the mean (gauge)
  - dataset_load_duration_seconds: File read time (histogram)
    Labels: format
  - dataset_rows_loaded (gauge), dataset_load_errors_total (counter)

Model Store Metrics:
  - model_store_gc_runs_total: Value-log GC runs (counter)
    Labels: result
  - model_store_gc_duration_seconds (histogram)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

# Usage Example

The engine reports through an observer so it does not import Prometheus:

	engine, err := recommend.NewEngine(cfg, trainer, logger,
	    recommend.WithObserver(metrics.NewRecommendObserver()))

HTTP metrics are recorded by middleware.PrometheusMetrics.
*/
package metrics
