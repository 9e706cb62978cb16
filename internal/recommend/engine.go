// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Engine runs the upsert, train and rank flow against an immutable baseline
// store. It is safe for concurrent use; requests never lock the baseline.
type Engine struct {
	config  *Config
	trainer Trainer
	logger  zerolog.Logger

	baseline atomic.Pointer[baselineState]

	memory   *MemoryModelCache
	extra    []ModelCache
	models   *TieredModelCache
	observer Observer
	group    singleflight.Group

	requestCount atomic.Int64
	errorCount   atomic.Int64
	trainCount   atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64

	trainMu             sync.RWMutex
	lastTrainedAt       time.Time
	lastTrainingElapsed time.Duration
}

// baselineState is the shared, read-only rating store plus its load stats.
type baselineState struct {
	store    *RatingStore
	stats    CorpusStats
	loadedAt time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an event observer, typically the Prometheus adapter.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithModelCache adds a slower cache tier behind the in-memory one,
// such as the persistent model store.
func WithModelCache(tier ModelCache) Option {
	return func(e *Engine) {
		if tier != nil {
			e.extra = append(e.extra, tier)
		}
	}
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, trainer Trainer, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if trainer == nil {
		return nil, fmt.Errorf("invalid config: trainer is required")
	}

	e := &Engine{
		config:   cfg.Clone(),
		trainer:  trainer,
		logger:   logger.With().Str("component", "recommend").Logger(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.config.Cache.Enabled {
		e.memory = NewMemoryModelCache(e.config.Cache.MaxEntries, e.config.Cache.TTL)
		tiers := append([]ModelCache{e.memory}, e.extra...)
		e.models = NewTieredModelCache(e.observer, tiers...)
	}

	e.baseline.Store(&baselineState{store: NewRatingStore(nil), loadedAt: time.Now()})

	e.logger.Info().
		Str("trainer", trainer.Name()).
		Str("fingerprint", trainer.Fingerprint()).
		Bool("cache", e.config.Cache.Enabled).
		Msg("recommendation engine created")

	return e, nil
}

// SetBaseline atomically replaces the baseline store.
// In-flight requests keep the store they started with.
//
//nolint:gocritic // hugeParam: stats passed by value for immutability
func (e *Engine) SetBaseline(store *RatingStore, stats CorpusStats) {
	if store == nil {
		store = NewRatingStore(nil)
	}
	e.baseline.Store(&baselineState{store: store, stats: stats, loadedAt: time.Now()})
	e.observer.ObserveBaseline(stats)

	e.logger.Info().
		Int("entries", stats.Entries).
		Int("imputed", stats.Imputed).
		Int("users", stats.Users).
		Int("items", stats.Items).
		Float64("mean", stats.Mean).
		Msg("baseline installed")
}

// Baseline returns the current baseline store and its stats.
func (e *Engine) Baseline() (*RatingStore, CorpusStats) {
	b := e.baseline.Load()
	return b.store, b.stats
}

// Catalog returns the baseline's distinct items in first-appearance order.
func (e *Engine) Catalog() []string {
	return e.baseline.Load().store.Items()
}

// Users returns the baseline's distinct users in first-appearance order.
func (e *Engine) Users() []string {
	return e.baseline.Load().store.Users()
}

// UserRatings returns the baseline rows of userID and whether the user exists.
func (e *Engine) UserRatings(userID string) ([]RatingEntry, bool) {
	store := e.baseline.Load().store
	rows := store.UserEntries(userID)
	return rows, len(rows) > 0
}

// Recommend upserts the request's ratings into a copy of the baseline,
// obtains a model for that copy (from cache or by training) and ranks the
// items the user has not rated.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	resp, err := e.recommend(ctx, req, logger, start)
	e.observer.ObserveRecommendation(Outcome(err), time.Since(start))
	if err != nil {
		e.errorCount.Add(1)
		logger.Warn().Err(err).Str("outcome", Outcome(err)).Msg("recommendation failed")
		return nil, err
	}

	logger.Info().
		Str("user_id", resp.UserID).
		Str("item_id", resp.RecommendedItemID).
		Int("candidates", resp.TotalCandidates).
		Bool("cache_hit", resp.Metadata.CacheHit).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, logger zerolog.Logger, start time.Time) (*Response, error) {
	if len(req.Ratings) == 0 {
		return nil, fmt.Errorf("recommend: no ratings provided: %w", ErrInvalidRating)
	}
	if len(req.Ratings) > e.config.Limits.MaxRatingsPerRequest {
		return nil, fmt.Errorf("recommend: %d ratings exceeds limit of %d: %w",
			len(req.Ratings), e.config.Limits.MaxRatingsPerRequest, ErrInvalidRating)
	}

	base := e.baseline.Load()
	store, userID, err := Upsert(base.store, req.Ratings, req.UserID, e.config.UpsertOptions())
	if err != nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}
	logger = logger.With().Str("resolved_user_id", userID).Int("entries", store.Len()).Logger()

	model, meta, err := e.modelFor(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	rated := make(map[string]struct{})
	for _, row := range store.UserEntries(userID) {
		rated[row.ItemID] = struct{}{}
	}

	items, err := Rank(ctx, model, store, userID, rated, req.TopK, e.config.Limits.ScoreWorkers)
	if err != nil {
		return nil, err
	}

	meta.RequestID = req.RequestID
	meta.LatencyMS = time.Since(start).Milliseconds()
	meta.Timestamp = time.Now()

	return &Response{
		UserID:            userID,
		IsNewUser:         req.UserID == "",
		RecommendedItemID: items[0].ItemID,
		Items:             items,
		TotalCandidates:   countScorable(model, store, rated),
		Metadata:          meta,
	}, nil
}

// Warm trains the baseline model and stores it in the cache.
func (e *Engine) Warm(ctx context.Context) error {
	store := e.baseline.Load().store
	if store.Len() == 0 {
		return fmt.Errorf("warm: %w", ErrEmptyCorpus)
	}
	_, meta, err := e.modelFor(ctx, store, e.logger)
	if err != nil {
		return fmt.Errorf("warm: %w", err)
	}
	e.logger.Info().
		Str("model_key", meta.ModelKey).
		Bool("cache_hit", meta.CacheHit).
		Msg("baseline model ready")
	return nil
}

// CleanupCache sweeps expired models from the in-memory tier.
func (e *Engine) CleanupCache() int {
	if e.memory == nil {
		return 0
	}
	return e.memory.CleanupExpired()
}

// Stats returns the engine counters.
func (e *Engine) Stats() EngineStats {
	b := e.baseline.Load()

	e.trainMu.RLock()
	lastTrainedAt := e.lastTrainedAt
	lastElapsed := e.lastTrainingElapsed
	e.trainMu.RUnlock()

	return EngineStats{
		RequestCount:           e.requestCount.Load(),
		ErrorCount:             e.errorCount.Load(),
		TrainCount:             e.trainCount.Load(),
		CacheHits:              e.cacheHits.Load(),
		CacheMisses:            e.cacheMisses.Load(),
		Baseline:               b.stats,
		BaselineLoadedAt:       b.loadedAt,
		LastTrainedAt:          lastTrainedAt,
		LastTrainingDurationMS: lastElapsed.Milliseconds(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.TopK <= 0 {
		req.TopK = e.config.Limits.DefaultK
	}
	if req.TopK > e.config.Limits.MaxK {
		req.TopK = e.config.Limits.MaxK
	}
	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Bool("new_user", req.UserID == "").
		Int("ratings", len(req.Ratings)).
		Int("top_k", req.TopK).
		Logger()
}

// modelFor returns a model for store, from the cache when possible.
// Concurrent misses on the same key share one training run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) modelFor(ctx context.Context, store *RatingStore, logger zerolog.Logger) (*FactorModel, ResponseMetadata, error) {
	key := ModelKey(store, e.trainer)
	meta := ResponseMetadata{ModelKey: key, Algorithm: e.trainer.Name()}

	if e.models != nil {
		model, tier, err := e.models.Lookup(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("model_key", key).Msg("model cache degraded")
		}
		if model != nil {
			e.cacheHits.Add(1)
			meta.CacheHit = true
			meta.CacheTier = tier
			fillModelMeta(&meta, model)
			logger.Debug().Str("tier", tier).Str("model_key", key).Msg("model cache hit")
			return model, meta, nil
		}
		e.cacheMisses.Add(1)
	}

	ch := e.group.DoChan(key, func() (any, error) {
		return e.train(ctx, store, key, logger)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, meta, ctx.Err()
	}

	// A shared run aborted by another caller's cancellation is not ours to report.
	if res.Err != nil && res.Shared && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
		model, err := e.train(ctx, store, key, logger)
		if err != nil {
			return nil, meta, err
		}
		res = singleflight.Result{Val: model}
	}
	if res.Err != nil {
		return nil, meta, res.Err
	}

	model, ok := res.Val.(*FactorModel)
	if !ok || model == nil {
		return nil, meta, fmt.Errorf("train: trainer %q returned no model", e.trainer.Name())
	}
	fillModelMeta(&meta, model)
	meta.TrainMS = model.TrainDuration.Milliseconds()
	return model, meta, nil
}

// train fits a model on store and writes it to the cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) train(ctx context.Context, store *RatingStore, key string, logger zerolog.Logger) (*FactorModel, error) {
	start := time.Now()
	logger.Debug().Str("model_key", key).Int("entries", store.Len()).Msg("training model")

	model, err := e.trainer.Train(ctx, store)
	elapsed := time.Since(start)

	epochs := 0
	if model != nil {
		epochs = model.Epochs
	}
	e.observer.ObserveTraining(e.trainer.Name(), elapsed, epochs, err)

	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	e.trainCount.Add(1)
	e.trainMu.Lock()
	e.lastTrainedAt = time.Now()
	e.lastTrainingElapsed = elapsed
	e.trainMu.Unlock()

	logger.Info().
		Str("trainer", e.trainer.Name()).
		Str("model_key", key).
		Int("epochs", epochs).
		Int("users", model.NumUsers()).
		Int("items", model.NumItems()).
		Dur("duration", elapsed).
		Msg("model trained")

	if e.models != nil {
		if err := e.models.Store(context.WithoutCancel(ctx), key, model); err != nil {
			logger.Warn().Err(err).Str("model_key", key).Msg("failed to cache model")
		}
	}

	return model, nil
}

func fillModelMeta(meta *ResponseMetadata, model *FactorModel) {
	if model.Algorithm != "" {
		meta.Algorithm = model.Algorithm
	}
	meta.Entries = model.Entries
	meta.Epochs = model.Epochs
	meta.TrainedAt = model.TrainedAt
}

// countScorable counts the unrated store items the model can score.
func countScorable(model *FactorModel, store *RatingStore, rated map[string]struct{}) int {
	n := 0
	for _, item := range Candidates(store, rated) {
		if model.HasItem(item) {
			n++
		}
	}
	return n
}

// Outcome maps a Recommend error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidRating):
		return OutcomeInvalidRating
	case errors.Is(err, ErrUnknownUser):
		return OutcomeUnknownUser
	case errors.Is(err, ErrEmptyCorpus):
		return OutcomeEmptyCorpus
	case errors.Is(err, ErrNoCandidates):
		return OutcomeNoCandidates
	case errors.Is(err, ErrTrainingTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
