// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Trainer contains the factorization hyperparameters.
	Trainer TrainerConfig `json:"trainer"`

	// Upsert controls how request ratings are merged into the store.
	Upsert UpsertConfig `json:"upsert"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains model caching parameters.
	Cache CacheConfig `json:"cache"`
}

// TrainerConfig contains parameters for the SGD factorization trainer.
type TrainerConfig struct {
	// Factors is the number of latent factors.
	// Default: 100.
	Factors int `json:"factors"`

	// LearningRate is the SGD step size.
	// Default: 0.005.
	LearningRate float64 `json:"learning_rate"`

	// Regularization is the L2 penalty applied to every bias and factor term.
	// Default: 0.02.
	Regularization float64 `json:"regularization"`

	// Epochs is the number of passes over the store.
	// Default: 20.
	Epochs int `json:"epochs"`

	// Seed drives factor initialization.
	// Default: 42.
	Seed int64 `json:"seed"`

	// InitStdDev is the standard deviation of the N(0, s) factor init.
	// Default: 0.1.
	InitStdDev float64 `json:"init_std_dev"`

	// MaxDuration is the wall-clock training budget. Zero disables it.
	// Default: 30s.
	MaxDuration time.Duration `json:"max_duration"`

	// ClipPredictions clips estimates to [RatingMin, RatingMax].
	// Default: true.
	ClipPredictions bool `json:"clip_predictions"`

	// RatingMin and RatingMax define the rating scale.
	// Defaults: 1 and 5.
	RatingMin float64 `json:"rating_min"`
	RatingMax float64 `json:"rating_max"`
}

// Fingerprint returns a stable identifier of every field that affects the
// trained model. MaxDuration is excluded since it only bounds training.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (t TrainerConfig) Fingerprint() string {
	d := xxhash.New()
	for _, s := range []string{
		strconv.Itoa(t.Factors),
		strconv.FormatUint(math.Float64bits(t.LearningRate), 16),
		strconv.FormatUint(math.Float64bits(t.Regularization), 16),
		strconv.Itoa(t.Epochs),
		strconv.FormatInt(t.Seed, 10),
		strconv.FormatUint(math.Float64bits(t.InitStdDev), 16),
		strconv.FormatBool(t.ClipPredictions),
		strconv.FormatUint(math.Float64bits(t.RatingMin), 16),
		strconv.FormatUint(math.Float64bits(t.RatingMax), 16),
	} {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{'|'})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// UpsertConfig controls the user upsert step.
type UpsertConfig struct {
	// UnknownUserPolicy is "permissive" or "strict".
	// Default: permissive.
	UnknownUserPolicy UnknownUserPolicy `json:"unknown_user_policy"`

	// EnforceRange rejects request ratings outside the trainer rating scale.
	// Default: true.
	EnforceRange bool `json:"enforce_range"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of recommendations returned when the request
	// does not ask for a specific number.
	// Default: 1.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k"`

	// MaxRatingsPerRequest caps the ratings a single request may supply.
	// Default: 1000.
	MaxRatingsPerRequest int `json:"max_ratings_per_request"`

	// ScoreWorkers is the number of goroutines used to score candidates.
	// Default: 4.
	ScoreWorkers int `json:"score_workers"`
}

// CacheConfig contains model cache parameters.
type CacheConfig struct {
	// Enabled controls whether trained models are cached.
	// Default: true.
	Enabled bool `json:"enabled"`

	// MaxEntries is the capacity of the in-memory tier.
	// Default: 16.
	MaxEntries int `json:"max_entries"`

	// TTL is the in-memory entry time-to-live.
	// Default: 30m.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Trainer: TrainerConfig{
			Factors:         100,
			LearningRate:    0.005,
			Regularization:  0.02,
			Epochs:          20,
			Seed:            42,
			InitStdDev:      0.1,
			MaxDuration:     30 * time.Second,
			ClipPredictions: true,
			RatingMin:       1,
			RatingMax:       5,
		},
		Upsert: UpsertConfig{
			UnknownUserPolicy: UnknownUserPermissive,
			EnforceRange:      true,
		},
		Limits: LimitsConfig{
			DefaultK:             1,
			MaxK:                 100,
			MaxRatingsPerRequest: 1000,
			ScoreWorkers:         4,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 16,
			TTL:        30 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	t := c.Trainer
	if t.Factors < 1 {
		return fmt.Errorf("trainer.factors must be positive, got %d", t.Factors)
	}
	if t.LearningRate <= 0 || math.IsInf(t.LearningRate, 0) || math.IsNaN(t.LearningRate) {
		return fmt.Errorf("trainer.learning_rate must be positive and finite, got %f", t.LearningRate)
	}
	if t.Regularization < 0 || math.IsInf(t.Regularization, 0) || math.IsNaN(t.Regularization) {
		return fmt.Errorf("trainer.regularization must be non-negative and finite, got %f", t.Regularization)
	}
	if t.Epochs < 1 {
		return fmt.Errorf("trainer.epochs must be positive, got %d", t.Epochs)
	}
	if t.InitStdDev < 0 || math.IsNaN(t.InitStdDev) {
		return fmt.Errorf("trainer.init_std_dev must be non-negative, got %f", t.InitStdDev)
	}
	if t.MaxDuration < 0 {
		return fmt.Errorf("trainer.max_duration must be non-negative, got %v", t.MaxDuration)
	}
	if t.RatingMax <= t.RatingMin {
		return fmt.Errorf("trainer.rating_max must be > trainer.rating_min, got %g <= %g", t.RatingMax, t.RatingMin)
	}

	if !c.Upsert.UnknownUserPolicy.Valid() {
		return fmt.Errorf("upsert.unknown_user_policy must be %q or %q, got %q",
			UnknownUserPermissive, UnknownUserStrict, c.Upsert.UnknownUserPolicy)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.MaxRatingsPerRequest < 1 {
		return fmt.Errorf("limits.max_ratings_per_request must be positive, got %d", c.Limits.MaxRatingsPerRequest)
	}
	if c.Limits.ScoreWorkers < 1 {
		return fmt.Errorf("limits.score_workers must be positive, got %d", c.Limits.ScoreWorkers)
	}

	if c.Cache.Enabled && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative, got %v", c.Cache.TTL)
	}

	return nil
}

// UpsertOptions derives the options passed to Upsert.
func (c *Config) UpsertOptions() UpsertOptions {
	opts := UpsertOptions{UnknownUser: c.Upsert.UnknownUserPolicy}
	if c.Upsert.EnforceRange {
		opts.MinRating = c.Trainer.RatingMin
		opts.MaxRating = c.Trainer.RatingMax
	}
	return opts
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	cp := *c
	return &cp
}
