// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelrank/internal/middleware"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/storage"
)

// RecommendService is the part of *recommend.Engine the handlers use.
type RecommendService interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Catalog() []string
	Users() []string
	UserRatings(userID string) ([]recommend.RatingEntry, bool)
	Stats() recommend.EngineStats
}

// ModelLister lists persisted models. *storage.ModelStore implements it.
type ModelLister interface {
	List(ctx context.Context) ([]storage.ModelMetadata, error)
}

// HandlerConfig holds request-level settings for the handlers.
type HandlerConfig struct {
	// RequestTimeout bounds a recommendation request, training included.
	RequestTimeout time.Duration

	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64

	// Version is reported by the health endpoints.
	Version string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: Shared helper functions
//   - handlers_health.go: Liveness and readiness
//   - handlers_recommend.go: Recommendations, catalog, users and models
type Handler struct {
	engine    RecommendService
	models    ModelLister
	config    HandlerConfig
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - engine: the recommendation engine
//   - models: the persistent model store, or nil when it is disabled
//   - cfg: request limits
//   - perfMon: per-endpoint latency stats (optional)
func NewHandler(engine RecommendService, models ModelLister, cfg HandlerConfig, perfMon *middleware.PerformanceMonitor) *Handler {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		models:    models,
		config:    cfg,
		perfMon:   perfMon,
		startTime: time.Now(),
	}
}

// requestContext applies the configured request timeout.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.config.RequestTimeout)
}
