// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelrank/internal/config"
	"github.com/tomtom215/reelrank/internal/dataset"
	"github.com/tomtom215/reelrank/internal/metrics"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/algorithms"
	"github.com/tomtom215/reelrank/internal/recommend/storage"
	"github.com/tomtom215/reelrank/internal/supervisor"
	"github.com/tomtom215/reelrank/internal/supervisor/services"
)

// RecommendComponents holds the recommendation engine and its model tiers.
type RecommendComponents struct {
	Engine *recommend.Engine

	// Store is nil when the persistent model store is disabled.
	Store *storage.ModelStore

	Maintenance *services.MaintenanceService
}

// Close releases the model store.
func (c *RecommendComponents) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// initRecommend loads the baseline corpus, opens the model store and builds
// the engine. The maintenance service is added to the data layer of tree.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*RecommendComponents, error) {
	loader, err := dataset.NewLoader(cfg.Data, logger)
	if err != nil {
		return nil, err
	}
	store, stats, err := loader.LoadCorpus(ctx, cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("load baseline corpus: %w", err)
	}
	logger.Info().
		Int("entries", stats.Entries).
		Int("users", stats.Users).
		Int("items", stats.Items).
		Float64("mean", stats.Mean).
		Msg("baseline corpus loaded")

	engineCfg := cfg.EngineConfig()
	opts := []recommend.Option{recommend.WithObserver(metrics.NewRecommendObserver())}

	components := &RecommendComponents{}
	if cfg.Store.Enabled {
		modelStore, err := storage.Open(cfg.StorageConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		components.Store = modelStore
		opts = append(opts, recommend.WithModelCache(storage.NewBreakerCache(modelStore, cfg.BreakerConfig(), logger)))
		logger.Info().
			Str("path", cfg.Store.Path).
			Bool("in_memory", cfg.Store.InMemory).
			Dur("ttl", cfg.Store.TTL).
			Msg("model store opened")
	} else {
		logger.Info().Msg("model store disabled (MODEL_STORE_ENABLED=false)")
	}

	engine, err := recommend.NewEngine(engineCfg, algorithms.NewSVD(engineCfg.Trainer), logger, opts...)
	if err != nil {
		_ = components.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetBaseline(store, stats)
	components.Engine = engine

	// An untyped nil keeps the collector interface nil when the store is off.
	var collector services.ValueLogCollector
	if components.Store != nil {
		collector = components.Store
	}
	components.Maintenance = services.NewMaintenanceService(engine, collector, services.MaintenanceServiceConfig{
		WarmOnStartup: cfg.Recommend.WarmOnStartup,
		WarmTimeout:   cfg.Server.RequestTimeout,
		Interval:      cfg.Store.GCInterval,
	}, logger)
	tree.AddDataService(components.Maintenance)

	logger.Info().
		Int("factors", engineCfg.Trainer.Factors).
		Int("epochs", engineCfg.Trainer.Epochs).
		Str("unknown_user_policy", string(engineCfg.Upsert.UnknownUserPolicy)).
		Bool("warm_on_startup", cfg.Recommend.WarmOnStartup).
		Msg("recommendation engine initialized")

	return components, nil
}
