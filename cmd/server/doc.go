// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package main is the entry point for the Reelrank HTTP server.

Reelrank serves movie recommendations from a latent factor model. A request
carries a user's ratings; the service merges them into a copy of the
baseline ratings table, trains (or reuses) a biased SVD model, and returns
the top-scoring unrated titles.

# Startup Order

 1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
 2. Logging: zerolog global logger, slog bridge for the supervisor
 3. Baseline: ratings file read through DuckDB and normalized
 4. Model store (optional): BadgerDB behind a gobreaker circuit breaker
 5. Engine: SVD trainer, in-memory model cache, Prometheus observer
 6. Supervisor tree: model maintenance in the data layer, HTTP in the API layer

# Configuration

Common environment variables:

	RATINGS_PATH=ratings.csv          ratings file (csv or parquet)
	RATINGS_ITEM_COLUMN=Movie         column names in the file
	HTTP_PORT=8080
	TRAINER_FACTORS=100 TRAINER_EPOCHS=20 TRAINER_SEED=42
	RECOMMEND_UNKNOWN_USER_POLICY=permissive
	MODEL_STORE_ENABLED=true MODEL_STORE_PATH=/data/models
	LOG_LEVEL=info LOG_FORMAT=json

See internal/config for the full list.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests within HTTP_SHUTDOWN_TIMEOUT, the maintenance service stops, and
the model store is closed. Services that overrun the timeout are logged.

# Usage

	RATINGS_PATH=./ratings.csv go run ./cmd/server

	curl -s localhost:8080/api/v1/recommendations \
	  -d '{"ratings":[{"item":"Heat","rating":5},{"item":"Alien","rating":"4"}]}'
*/
package main
