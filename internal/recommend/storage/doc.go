// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package storage persists trained factor models in BadgerDB.
//
// ModelStore is the persistent tier of the engine's model cache. Models are
// keyed by recommend.ModelKey, so a restart with the same ratings file and
// trainer settings reuses the model trained before it.
//
// # Storage Format
//
//	key:   model:{content-hash}-{algorithm}-{fingerprint}
//	value: gob(storedModel{
//	           Metadata:       ModelMetadata,
//	           CompressedData: gzip(gob(recommend.FactorModel)),
//	       })
//
// Metadata carries a SHA-256 checksum of the uncompressed model, verified on
// every load. Entries expire through badger's native TTL.
//
// # Circuit Breaker
//
// BreakerCache wraps any tier with a gobreaker circuit breaker. After
// repeated failures the tier is skipped until the breaker's timeout
// passes, so a failing disk degrades to cache misses.
//
// # Usage Example
//
//	store, err := storage.Open(storage.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	tier := storage.NewBreakerCache(store, storage.DefaultBreakerConfig("model-store"), logger)
//	engine, err := recommend.NewEngine(cfg, trainer, logger, recommend.WithModelCache(tier))
package storage
