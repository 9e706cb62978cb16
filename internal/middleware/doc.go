// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package middleware provides HTTP middleware components for the API server.

Key Components:

  - RequestID: request and correlation ids in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per route
  - PerformanceMonitor: sliding-window latency percentiles and slow request logs
  - Compression: gzip for clients that accept it

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(monitor.Middleware)
	r.With(middleware.Compression).Get("/api/v1/items", h.Items)

Metrics and performance records are labelled with the chi route pattern
("/api/v1/users/{userID}/ratings"), never the raw path.
*/
package middleware
