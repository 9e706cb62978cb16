// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"time"
)

// Request is one recommendation request.
type Request struct {
	// RequestID traces the request. Generated if empty.
	RequestID string `json:"request_id,omitempty"`

	// UserID selects an existing user whose ratings are replaced by Ratings.
	// Empty means a new user; an id is allocated.
	UserID string `json:"user_id,omitempty"`

	// Ratings are the caller's ratings, in request order.
	Ratings []ItemRating `json:"-"`

	// TopK is the number of items to return. Zero uses the configured default.
	TopK int `json:"top_k,omitempty"`
}

// Response is the result of a recommendation request.
type Response struct {
	// UserID is the resolved user id (allocated for new users).
	UserID string `json:"user_id"`

	// IsNewUser reports whether UserID was allocated by this request.
	IsNewUser bool `json:"is_new_user"`

	// RecommendedItemID is the top-ranked item.
	RecommendedItemID string `json:"recommended_item_id"`

	// Items holds the top K items, best first.
	Items []ScoredItem `json:"items"`

	// TotalCandidates is the number of items that were eligible for ranking.
	TotalCandidates int `json:"total_candidates"`

	// Metadata describes how the response was produced.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains request processing details.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// Algorithm names the trainer that produced the model.
	Algorithm string `json:"algorithm"`

	// ModelKey is the cache key of the model used.
	ModelKey string `json:"model_key"`

	// CacheHit is true if the model came from the cache.
	CacheHit bool `json:"cache_hit"`

	// CacheTier names the tier that served the model, if any.
	CacheTier string `json:"cache_tier,omitempty"`

	// Entries is the size of the store the model was trained on.
	Entries int `json:"entries"`

	// Epochs is the number of epochs the model was trained for.
	Epochs int `json:"epochs"`

	// TrainMS is the training duration, zero on a cache hit.
	TrainMS int64 `json:"train_ms"`

	// LatencyMS is the total processing time.
	LatencyMS int64 `json:"latency_ms"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Outcome labels for Observer.ObserveRecommendation.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidRating = "invalid_rating"
	OutcomeUnknownUser   = "unknown_user"
	OutcomeEmptyCorpus   = "empty_corpus"
	OutcomeNoCandidates  = "no_candidates"
	OutcomeTimeout       = "timeout"
	OutcomeCanceled      = "canceled"
	OutcomeError         = "error"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// ObserveTraining is called after every training run.
	ObserveTraining(algorithm string, d time.Duration, epochs int, err error)

	// ObserveCache is called after every model cache lookup.
	ObserveCache(tier string, hit bool)

	// ObserveRecommendation is called once per request with its outcome label.
	ObserveRecommendation(outcome string, d time.Duration)

	// ObserveBaseline is called when the baseline store is replaced.
	ObserveBaseline(stats CorpusStats)
}

// nopObserver discards all events.
type nopObserver struct{}

func (nopObserver) ObserveTraining(string, time.Duration, int, error) {}
func (nopObserver) ObserveCache(string, bool) {}
func (nopObserver) ObserveRecommendation(string, time.Duration) {}
func (nopObserver) ObserveBaseline(CorpusStats) {}

// EngineStats contains engine counters and baseline details.
type EngineStats struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// ErrorCount is the number of failed requests.
	ErrorCount int64 `json:"error_count"`

	// TrainCount is the number of completed training runs.
	TrainCount int64 `json:"train_count"`

	// CacheHits is the number of model cache hits.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of model cache misses.
	CacheMisses int64 `json:"cache_misses"`

	// Baseline describes the current baseline store.
	Baseline CorpusStats `json:"baseline"`

	// BaselineLoadedAt is when the baseline was installed.
	BaselineLoadedAt time.Time `json:"baseline_loaded_at"`

	// LastTrainedAt is when the last training run finished.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is the duration of the last training run.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`
}
