// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package api provides the HTTP REST API layer for Reelrank.

Key Components:

  - Router: Chi route configuration and middleware stack
  - Handler: request handlers backed by a RecommendService
  - Response formatting: the APIResponse{success, data, error, meta} envelope
  - Error mapping: recommendation errors to HTTP status codes
  - Rate limiting: go-chi/httprate keyed by client IP
  - CORS: go-chi/cors

Endpoints:

	POST /api/v1/recommendations        recommend for a new or returning user
	GET  /api/v1/items                  catalog in first-appearance order
	GET  /api/v1/users                  known user ids
	GET  /api/v1/users/{userID}/ratings one user's rows
	GET  /api/v1/models                 persisted model metadata
	GET  /api/v1/stats                  engine counters and endpoint latency
	GET  /api/v1/health/live            liveness
	GET  /api/v1/health/ready           readiness (baseline loaded)
	GET  /metrics                       Prometheus scrape endpoint

Recommendation Request:

	{
	  "user_id": "42",
	  "ratings": [
	    {"item": "Heat", "rating": 5},
	    {"item": "Alien", "rating": "4 stars"},
	    {"item": "Up", "rating": "3/5"}
	  ],
	  "top_k": 3
	}

Omitting user_id creates a new user. A rating may be a JSON number or any
string the rating normalizer understands.

Error Mapping:

	INVALID_RATING, UNKNOWN_USER, VALIDATION_FAILED  400
	NO_CANDIDATES                                    422
	EMPTY_CORPUS                                     503
	TRAINING_TIMEOUT                                 504
	anything else                                    500

Usage Example:

	handler := api.NewHandler(engine, store, api.HandlerConfig{
	    RequestTimeout: cfg.Server.RequestTimeout,
	    MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}, middleware.NewPerformanceMonitor(1000, time.Second))
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))
	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
*/
package api
