// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelrank/internal/dataset"
	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/storage"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Data: the ratings file and its column layout
//  2. Model: trainer hyperparameters, request limits, model cache and store
//  3. Server: HTTP listener, CORS and rate limiting
//  4. Observability: log level and output format
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine, err := recommend.NewEngine(cfg.EngineConfig(), trainer, logger)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      dataset.Config  `koanf:"data"`
	Trainer   TrainerConfig   `koanf:"trainer"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Store     StoreConfig     `koanf:"store"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds a single recommendation request, training included.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	Environment string `koanf:"environment"` // "development", "staging", "production"
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TrainerConfig holds the factorization hyperparameters.
//
// Environment Variables:
//   - TRAINER_FACTORS, TRAINER_EPOCHS, TRAINER_SEED
//   - TRAINER_LEARNING_RATE, TRAINER_REGULARIZATION, TRAINER_INIT_STD_DEV
//   - TRAINER_MAX_DURATION: training budget (e.g. 30s, 0 disables)
//   - TRAINER_CLIP_PREDICTIONS, TRAINER_RATING_MIN, TRAINER_RATING_MAX
type TrainerConfig struct {
	Factors         int           `koanf:"factors"`
	LearningRate    float64       `koanf:"learning_rate"`
	Regularization  float64       `koanf:"regularization"`
	Epochs          int           `koanf:"epochs"`
	Seed            int64         `koanf:"seed"`
	InitStdDev      float64       `koanf:"init_std_dev"`
	MaxDuration     time.Duration `koanf:"max_duration"`
	ClipPredictions bool          `koanf:"clip_predictions"`
	RatingMin       float64       `koanf:"rating_min"`
	RatingMax       float64       `koanf:"rating_max"`
}

// RecommendConfig holds request handling settings.
type RecommendConfig struct {
	// UnknownUserPolicy is "permissive" or "strict".
	UnknownUserPolicy string `koanf:"unknown_user_policy"`

	// EnforceRange rejects request ratings outside [rating_min, rating_max].
	EnforceRange bool `koanf:"enforce_range"`

	DefaultK             int `koanf:"default_k"`
	MaxK                 int `koanf:"max_k"`
	MaxRatingsPerRequest int `koanf:"max_ratings_per_request"`
	ScoreWorkers         int `koanf:"score_workers"`

	// WarmOnStartup trains the baseline model once the server starts.
	WarmOnStartup bool `koanf:"warm_on_startup"`
}

// CacheConfig holds the in-memory model cache settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	MaxEntries int           `koanf:"max_entries"`
	TTL        time.Duration `koanf:"ttl"`
}

// StoreConfig holds the persistent model store settings.
type StoreConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	TTL        time.Duration `koanf:"ttl"`
	GCRatio    float64       `koanf:"gc_ratio"`
	SyncWrites bool          `koanf:"sync_writes"`

	// GCInterval is how often the maintenance service runs value-log GC
	// and sweeps expired in-memory entries.
	GCInterval time.Duration `koanf:"gc_interval"`

	// Circuit breaker around the store.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
//   - LOG_TIMESTAMP: true/false (default: true)
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// EngineConfig converts the model sections into a recommend.Config.
func (c *Config) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Trainer: recommend.TrainerConfig{
			Factors:         c.Trainer.Factors,
			LearningRate:    c.Trainer.LearningRate,
			Regularization:  c.Trainer.Regularization,
			Epochs:          c.Trainer.Epochs,
			Seed:            c.Trainer.Seed,
			InitStdDev:      c.Trainer.InitStdDev,
			MaxDuration:     c.Trainer.MaxDuration,
			ClipPredictions: c.Trainer.ClipPredictions,
			RatingMin:       c.Trainer.RatingMin,
			RatingMax:       c.Trainer.RatingMax,
		},
		Upsert: recommend.UpsertConfig{
			UnknownUserPolicy: recommend.UnknownUserPolicy(c.Recommend.UnknownUserPolicy),
			EnforceRange:      c.Recommend.EnforceRange,
		},
		Limits: recommend.LimitsConfig{
			DefaultK:             c.Recommend.DefaultK,
			MaxK:                 c.Recommend.MaxK,
			MaxRatingsPerRequest: c.Recommend.MaxRatingsPerRequest,
			ScoreWorkers:         c.Recommend.ScoreWorkers,
		},
		Cache: recommend.CacheConfig{
			Enabled:    c.Cache.Enabled,
			MaxEntries: c.Cache.MaxEntries,
			TTL:        c.Cache.TTL,
		},
	}
}

// StorageConfig converts the store section into a storage.Config.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Path:       c.Store.Path,
		InMemory:   c.Store.InMemory,
		TTL:        c.Store.TTL,
		GCRatio:    c.Store.GCRatio,
		SyncWrites: c.Store.SyncWrites,
	}
}

// BreakerConfig returns the circuit breaker settings for the model store.
func (c *Config) BreakerConfig() storage.BreakerConfig {
	cfg := storage.DefaultBreakerConfig("model-store")
	cfg.FailureThreshold = c.Store.BreakerFailureThreshold
	cfg.Timeout = c.Store.BreakerTimeout
	return cfg
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Caller:    c.Logging.Caller,
		Timestamp: c.Logging.Timestamp,
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from the following sources in order of precedence
// (highest priority first):
//  1. Environment variables
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
