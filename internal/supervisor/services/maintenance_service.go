// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/metrics"
)

// ModelEngine is the part of the recommendation engine maintenance needs.
// *recommend.Engine satisfies it.
type ModelEngine interface {
	// Warm trains and caches the baseline model.
	Warm(ctx context.Context) error

	// CleanupCache sweeps expired entries from the in-memory model cache.
	CleanupCache() int
}

// ValueLogCollector reclaims space in the persistent model store.
// *storage.ModelStore satisfies it.
type ValueLogCollector interface {
	RunGC() error
}

// MaintenanceServiceConfig holds configuration for the maintenance service.
type MaintenanceServiceConfig struct {
	// WarmOnStartup trains the baseline model when the service starts,
	// so the first request finds it cached.
	WarmOnStartup bool

	// WarmTimeout bounds the startup warm-up.
	// Default: 5m
	WarmTimeout time.Duration

	// Interval is how often the sweep runs.
	// Default: 10m
	Interval time.Duration
}

// MaintenanceService keeps the model tiers tidy under Suture supervision:
// an optional baseline warm-up, then on every tick an expiry sweep of the
// in-memory cache and a value-log GC of the model store.
type MaintenanceService struct {
	engine    ModelEngine
	store     ValueLogCollector
	config    MaintenanceServiceConfig
	logger    zerolog.Logger
	name      string
	startedAt time.Time
	warmed    bool
}

// NewMaintenanceService creates a new maintenance service.
// store may be nil when the persistent tier is disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(engine ModelEngine, store ValueLogCollector, cfg MaintenanceServiceConfig, logger zerolog.Logger) *MaintenanceService {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.WarmTimeout <= 0 {
		cfg.WarmTimeout = 5 * time.Minute
	}
	return &MaintenanceService{
		engine:    engine,
		store:     store,
		config:    cfg,
		logger:    logger.With().Str("service", "model-maintenance").Logger(),
		name:      "model-maintenance",
		startedAt: time.Now(),
	}
}

// Serve implements the suture.Service interface.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("warm_on_startup", s.config.WarmOnStartup).
		Dur("interval", s.config.Interval).
		Bool("model_store", s.store != nil).
		Msg("maintenance service starting")

	// A restart after a crash does not warm again.
	if s.config.WarmOnStartup && !s.warmed {
		s.warm(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("maintenance service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.sweep()
		}
	}
}

// warm trains the baseline model. A failure is logged; requests train on demand.
func (s *MaintenanceService) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, s.config.WarmTimeout)
	defer cancel()

	start := time.Now()
	if err := s.engine.Warm(warmCtx); err != nil {
		s.logger.Warn().Err(err).Msg("baseline warm-up failed (models will train on demand)")
		return
	}
	s.warmed = true
	s.logger.Info().Dur("duration", time.Since(start)).Msg("baseline warm-up complete")
}

// sweep runs one maintenance cycle.
func (s *MaintenanceService) sweep() {
	metrics.UpdateUptime(s.startedAt)

	if n := s.engine.CleanupCache(); n > 0 {
		metrics.RecordModelCacheExpired(n)
		s.logger.Debug().Int("expired", n).Msg("swept expired models")
	}

	if s.store == nil {
		return
	}

	start := time.Now()
	err := s.store.RunGC()
	metrics.RecordModelStoreGC(time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("model store GC failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("model store GC complete")
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
