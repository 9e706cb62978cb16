// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

/*
Package cache provides a generic, thread-safe LRU cache with TTL support.

It backs the in-memory tier of the trained model cache: training a factor
model is the only expensive step of a request, and identical rating stores
produce identical models, so a model keyed by store content can be reused.

# Usage Example

	models := cache.NewLRUCache[*recommend.FactorModel](16, 30*time.Minute)
	models.Add(key, model)

	if m, ok := models.Get(key); ok {
	    // use m
	}

	// periodic sweep, e.g. from a maintenance service
	removed := models.CleanupExpired()

# Thread Safety

All methods are safe for concurrent use. Get mutates recency order and takes
the write lock; Contains, Keys, Len and Stats take the read lock.
*/
package cache
