// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelrank/internal/metrics"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerCache guards a model cache tier with a circuit breaker.
// While the breaker is open, calls fail fast without touching the tier.
type BreakerCache struct {
	next recommend.ModelCache
	cb   *gobreaker.CircuitBreaker[*recommend.FactorModel]
}

// NewBreakerCache wraps next with a circuit breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerCache(next recommend.ModelCache, cfg BreakerConfig, logger zerolog.Logger) *BreakerCache {
	if cfg.Name == "" {
		cfg.Name = next.Name()
	}
	log := logger.With().Str("component", "model-store").Str("breaker", cfg.Name).Logger()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Caller cancellation says nothing about the tier's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("model store circuit breaker state changed")
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerCache{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*recommend.FactorModel](settings),
	}
}

// Name returns the wrapped tier's name.
func (b *BreakerCache) Name() string { return b.next.Name() }

// Get reads through the breaker.
func (b *BreakerCache) Get(ctx context.Context, key string) (*recommend.FactorModel, error) {
	model, err := b.cb.Execute(func() (*recommend.FactorModel, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, fmt.Errorf("breaker %s: %w", b.cb.Name(), err)
	}
	return model, nil
}

// Put writes through the breaker.
func (b *BreakerCache) Put(ctx context.Context, key string, model *recommend.FactorModel) error {
	_, err := b.cb.Execute(func() (*recommend.FactorModel, error) {
		return nil, b.next.Put(ctx, key, model)
	})
	if err != nil {
		return fmt.Errorf("breaker %s: %w", b.cb.Name(), err)
	}
	return nil
}

// State returns the breaker state for monitoring.
func (b *BreakerCache) State() string {
	return b.cb.State().String()
}

var _ recommend.ModelCache = (*BreakerCache)(nil)
