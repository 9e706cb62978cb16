// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package metrics

import (
	"time"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// RecommendObserver feeds engine events into the Prometheus collectors.
type RecommendObserver struct{}

// NewRecommendObserver returns an observer for recommend.WithObserver.
func NewRecommendObserver() *RecommendObserver {
	return &RecommendObserver{}
}

// ObserveTraining records one training run.
func (RecommendObserver) ObserveTraining(algorithm string, d time.Duration, epochs int, err error) {
	TrainingDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	if epochs > 0 {
		TrainingEpochs.WithLabelValues(algorithm).Add(float64(epochs))
	}
	if err != nil {
		TrainingFailures.WithLabelValues(algorithm, recommend.Outcome(err)).Inc()
	}
}

// ObserveCache records one model cache lookup on a tier.
func (RecommendObserver) ObserveCache(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ModelCacheRequests.WithLabelValues(tier, result).Inc()
}

// ObserveRecommendation records one finished request.
func (RecommendObserver) ObserveRecommendation(outcome string, d time.Duration) {
	RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(d.Seconds())
}

// ObserveBaseline publishes the baseline gauges.
//
//nolint:gocritic // hugeParam: stats passed by value to satisfy the interface
func (RecommendObserver) ObserveBaseline(stats recommend.CorpusStats) {
	BaselineEntries.Set(float64(stats.Entries))
	BaselineUsers.Set(float64(stats.Users))
	BaselineItems.Set(float64(stats.Items))
	BaselineImputed.Set(float64(stats.Imputed))
}

var _ recommend.Observer = RecommendObserver{}
