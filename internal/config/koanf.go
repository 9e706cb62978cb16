// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelrank/internal/dataset"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/storage"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrank/config.yaml",
	"/etc/reelrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	store := storage.DefaultConfig()
	breaker := storage.DefaultBreakerConfig("model-store")

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // covers a cold training run
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
			MaxBodyBytes:    1 << 20,
			Environment:     "development",
		},
		Data: dataset.DefaultConfig(),
		Trainer: TrainerConfig{
			Factors:         engine.Trainer.Factors,
			LearningRate:    engine.Trainer.LearningRate,
			Regularization:  engine.Trainer.Regularization,
			Epochs:          engine.Trainer.Epochs,
			Seed:            engine.Trainer.Seed,
			InitStdDev:      engine.Trainer.InitStdDev,
			MaxDuration:     engine.Trainer.MaxDuration,
			ClipPredictions: engine.Trainer.ClipPredictions,
			RatingMin:       engine.Trainer.RatingMin,
			RatingMax:       engine.Trainer.RatingMax,
		},
		Recommend: RecommendConfig{
			UnknownUserPolicy:    string(engine.Upsert.UnknownUserPolicy),
			EnforceRange:         engine.Upsert.EnforceRange,
			DefaultK:             engine.Limits.DefaultK,
			MaxK:                 engine.Limits.MaxK,
			MaxRatingsPerRequest: engine.Limits.MaxRatingsPerRequest,
			ScoreWorkers:         engine.Limits.ScoreWorkers,
			WarmOnStartup:        true,
		},
		Cache: CacheConfig{
			Enabled:    engine.Cache.Enabled,
			MaxEntries: engine.Cache.MaxEntries,
			TTL:        engine.Cache.TTL,
		},
		Store: StoreConfig{
			Enabled:                 true,
			Path:                    store.Path,
			InMemory:                store.InMemory,
			TTL:                     store.TTL,
			GCRatio:                 store.GCRatio,
			SyncWrites:              store.SyncWrites,
			GCInterval:              10 * time.Minute,
			BreakerFailureThreshold: breaker.FailureThreshold,
			BreakerTimeout:          breaker.Timeout,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TRAINER_FACTORS -> trainer.factors
	// RATINGS_PATH -> data.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings is the allow-list of environment variables, keyed by the
// lower-cased variable name.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_max_body_bytes":   "server.max_body_bytes",
	"request_timeout":       "server.request_timeout",
	"environment":           "server.environment",

	// Dataset mappings
	"ratings_path":          "data.path",
	"ratings_format":        "data.format",
	"ratings_user_column":   "data.user_column",
	"ratings_item_column":   "data.item_column",
	"ratings_rating_column": "data.rating_column",
	"ratings_delimiter":     "data.delimiter",
	"duckdb_threads":        "data.threads",

	// Trainer mappings
	"trainer_factors":          "trainer.factors",
	"trainer_learning_rate":    "trainer.learning_rate",
	"trainer_regularization":   "trainer.regularization",
	"trainer_epochs":           "trainer.epochs",
	"trainer_seed":             "trainer.seed",
	"trainer_init_std_dev":     "trainer.init_std_dev",
	"trainer_max_duration":     "trainer.max_duration",
	"trainer_clip_predictions": "trainer.clip_predictions",
	"trainer_rating_min":       "trainer.rating_min",
	"trainer_rating_max":       "trainer.rating_max",

	// Recommendation mappings
	"recommend_unknown_user_policy": "recommend.unknown_user_policy",
	"recommend_enforce_range":       "recommend.enforce_range",
	"recommend_default_k":           "recommend.default_k",
	"recommend_max_k":               "recommend.max_k",
	"recommend_max_ratings":         "recommend.max_ratings_per_request",
	"recommend_score_workers":       "recommend.score_workers",
	"recommend_warm_on_startup":     "recommend.warm_on_startup",

	// Model cache mappings
	"model_cache_enabled":     "cache.enabled",
	"model_cache_max_entries": "cache.max_entries",
	"model_cache_ttl":         "cache.ttl",

	// Model store mappings
	"model_store_enabled":           "store.enabled",
	"model_store_path":              "store.path",
	"model_store_in_memory":         "store.in_memory",
	"model_store_ttl":               "store.ttl",
	"model_store_gc_ratio":          "store.gc_ratio",
	"model_store_gc_interval":       "store.gc_interval",
	"model_store_sync_writes":       "store.sync_writes",
	"model_store_breaker_threshold": "store.breaker_failure_threshold",
	"model_store_breaker_timeout":   "store.breaker_timeout",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging mappings
	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"log_caller":    "logging.caller",
	"log_timestamp": "logging.timestamp",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RATINGS_PATH -> data.path
//   - TRAINER_FACTORS -> trainer.factors
//   - DISABLE_RATE_LIMIT -> security.rate_limit_disabled
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
