// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package config provides centralized configuration management for Reelrank.

# Configuration Sources

Configuration is layered with Koanf v2, lowest priority first:
  - Built-in defaults (structs provider)
  - An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/reelrank/config.yaml and /etc/reelrank/config.yml
  - Environment variables from an explicit allow-list

Unknown environment variables are ignored.

# Environment Variables

HTTP Server (server):
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - HTTP_MAX_BODY_BYTES (default: 1MB)
  - REQUEST_TIMEOUT: per-request budget including training (default: 45s)
  - ENVIRONMENT: development, staging or production

Ratings file (data):
  - RATINGS_PATH (default: ratings.csv)
  - RATINGS_FORMAT: auto, csv or parquet
  - RATINGS_USER_COLUMN, RATINGS_ITEM_COLUMN, RATINGS_RATING_COLUMN
    (defaults: User, Movie, Rating)
  - RATINGS_DELIMITER, DUCKDB_THREADS

Trainer (trainer):
  - TRAINER_FACTORS (100), TRAINER_LEARNING_RATE (0.005),
    TRAINER_REGULARIZATION (0.02), TRAINER_EPOCHS (20), TRAINER_SEED (42)
  - TRAINER_INIT_STD_DEV (0.1), TRAINER_MAX_DURATION (30s)
  - TRAINER_CLIP_PREDICTIONS (true), TRAINER_RATING_MIN (1), TRAINER_RATING_MAX (5)

Requests (recommend):
  - RECOMMEND_UNKNOWN_USER_POLICY: permissive or strict
  - RECOMMEND_ENFORCE_RANGE, RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K
  - RECOMMEND_MAX_RATINGS, RECOMMEND_SCORE_WORKERS, RECOMMEND_WARM_ON_STARTUP

Model cache and store (cache, store):
  - MODEL_CACHE_ENABLED, MODEL_CACHE_MAX_ENTRIES, MODEL_CACHE_TTL
  - MODEL_STORE_ENABLED, MODEL_STORE_PATH, MODEL_STORE_IN_MEMORY, MODEL_STORE_TTL
  - MODEL_STORE_GC_RATIO, MODEL_STORE_GC_INTERVAL, MODEL_STORE_SYNC_WRITES
  - MODEL_STORE_BREAKER_THRESHOLD, MODEL_STORE_BREAKER_TIMEOUT

Security (security):
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging (logging):
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER, LOG_TIMESTAMP

# Validation

Load returns an error naming the offending key, for example:

	configuration validation failed: trainer.factors must be positive, got 0

Wildcard CORS origins are rejected when ENVIRONMENT=production.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggerConfig())
	engine, err := recommend.NewEngine(cfg.EngineConfig(), algorithms.NewSVD(cfg.EngineConfig().Trainer), logging.Logger())
*/
package config
