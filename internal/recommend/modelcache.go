// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelrank/internal/cache"
)

// ModelCache stores trained models by key.
//
// Get returns (nil, nil) on a miss. An error means the tier could not answer;
// callers treat it as a miss.
type ModelCache interface {
	// Name identifies the tier in logs and metrics.
	Name() string

	Get(ctx context.Context, key string) (*FactorModel, error)
	Put(ctx context.Context, key string, model *FactorModel) error
}

// ModelKey derives the cache key of the model trainer would fit on store.
func ModelKey(store *RatingStore, trainer Trainer) string {
	return fmt.Sprintf("%016x-%s-%s", store.ContentHash(), trainer.Name(), trainer.Fingerprint())
}

// MemoryModelCache is an in-process LRU tier.
type MemoryModelCache struct {
	lru *cache.LRUCache[*FactorModel]
}

// NewMemoryModelCache creates a memory tier holding up to capacity models.
func NewMemoryModelCache(capacity int, ttl time.Duration) *MemoryModelCache {
	return &MemoryModelCache{lru: cache.NewLRUCache[*FactorModel](capacity, ttl)}
}

// Name implements ModelCache.
func (m *MemoryModelCache) Name() string { return "memory" }

// Get implements ModelCache.
func (m *MemoryModelCache) Get(_ context.Context, key string) (*FactorModel, error) {
	model, ok := m.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return model, nil
}

// Put implements ModelCache.
func (m *MemoryModelCache) Put(_ context.Context, key string, model *FactorModel) error {
	m.lru.Add(key, model)
	return nil
}

// CleanupExpired drops expired models and returns how many were removed.
func (m *MemoryModelCache) CleanupExpired() int {
	return m.lru.CleanupExpired()
}

// Stats returns the LRU counters.
func (m *MemoryModelCache) Stats() cache.Stats {
	return m.lru.Stats()
}

// TieredModelCache checks its tiers in order and promotes hits from slower
// tiers into every faster one.
type TieredModelCache struct {
	tiers    []ModelCache
	observer Observer
}

// NewTieredModelCache creates a cache over tiers, fastest first.
// Nil tiers are ignored.
func NewTieredModelCache(observer Observer, tiers ...ModelCache) *TieredModelCache {
	if observer == nil {
		observer = nopObserver{}
	}
	kept := make([]ModelCache, 0, len(tiers))
	for _, t := range tiers {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &TieredModelCache{tiers: kept, observer: observer}
}

// Tiers returns the tier names, fastest first.
func (t *TieredModelCache) Tiers() []string {
	names := make([]string, len(t.tiers))
	for i, tier := range t.tiers {
		names[i] = tier.Name()
	}
	return names
}

// Lookup returns the model for key and the name of the tier that served it.
// Tier errors do not stop the lookup; they are joined and returned alongside
// the result so the caller can log them.
func (t *TieredModelCache) Lookup(ctx context.Context, key string) (*FactorModel, string, error) {
	var errs []error
	for i, tier := range t.tiers {
		model, err := tier.Get(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s tier get: %w", tier.Name(), err))
		}
		hit := err == nil && model != nil
		t.observer.ObserveCache(tier.Name(), hit)
		if !hit {
			continue
		}

		for j := 0; j < i; j++ {
			if perr := t.tiers[j].Put(ctx, key, model); perr != nil {
				errs = append(errs, fmt.Errorf("%s tier promote: %w", t.tiers[j].Name(), perr))
			}
		}
		return model, tier.Name(), errors.Join(errs...)
	}
	return nil, "", errors.Join(errs...)
}

// Store writes model to every tier.
func (t *TieredModelCache) Store(ctx context.Context, key string, model *FactorModel) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Put(ctx, key, model); err != nil {
			errs = append(errs, fmt.Errorf("%s tier put: %w", tier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
