// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// meanTrainer builds a model whose score for an item is its mean rating.
// User vectors are zero, so rankings depend only on items.
type meanTrainer struct {
	calls   atomic.Int32
	delay   time.Duration
	err     error
	release chan struct{}
}

func (m *meanTrainer) Name() string        { return "mean" }
func (m *meanTrainer) Fingerprint() string { return "v1" }

func (m *meanTrainer) Train(ctx context.Context, store *RatingStore) (*FactorModel, error) {
	m.calls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("mean: %w", ErrEmptyCorpus)
	}
	return meanModel(store), nil
}

// meanModel builds the item-mean model directly.
func meanModel(store *RatingStore) *FactorModel {
	mu := store.Mean()
	m := &FactorModel{
		Algorithm:  "mean",
		GlobalBias: mu,
		UserIndex:  map[string]int{},
		ItemIndex:  map[string]int{},
		Factors:    1,
		Epochs:     1,
		Entries:    store.Len(),
		TrainedAt:  time.Now(),
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for i := 0; i < store.Len(); i++ {
		e := store.At(i)
		if _, ok := m.UserIndex[e.UserID]; !ok {
			m.UserIndex[e.UserID] = len(m.UserBias)
			m.UserBias = append(m.UserBias, 0)
			m.UserFactors = append(m.UserFactors, []float64{0})
		}
		if _, ok := m.ItemIndex[e.ItemID]; !ok {
			m.ItemIndex[e.ItemID] = len(m.ItemBias)
			m.ItemBias = append(m.ItemBias, 0)
			m.ItemFactors = append(m.ItemFactors, []float64{0})
		}
		sums[e.ItemID] += e.Rating
		counts[e.ItemID]++
	}
	for item, i := range m.ItemIndex {
		m.ItemBias[i] = sums[item]/float64(counts[item]) - mu
	}
	return m
}

// recordingObserver captures observer events.
type recordingObserver struct {
	mu        sync.Mutex
	trainings []error
	cache     map[string][2]int
	outcomes  []string
	baselines []CorpusStats
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{cache: map[string][2]int{}}
}

func (r *recordingObserver) ObserveTraining(_ string, _ time.Duration, _ int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trainings = append(r.trainings, err)
}

func (r *recordingObserver) ObserveCache(tier string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cache[tier]
	if hit {
		c[0]++
	} else {
		c[1]++
	}
	r.cache[tier] = c
}

func (r *recordingObserver) ObserveRecommendation(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingObserver) ObserveBaseline(stats CorpusStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baselines = append(r.baselines, stats)
}

func (r *recordingObserver) Outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}
