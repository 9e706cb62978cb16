// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package algorithms implements the trainers used by the recommendation engine.
//
// Each trainer implements recommend.Trainer and returns a fresh
// recommend.FactorModel per run, so one trainer value can serve concurrent
// requests that train on different stores.
//
// # Algorithms
//
//   - SVD: biased matrix factorization fitted with SGD over explicit ratings
//
// # Determinism
//
// Training uses a math/rand source seeded from the configuration and visits
// entries in store order. Equal inputs give bit-identical models, which is
// what allows models to be cached by store content hash.
//
// # Budgets
//
// The epoch count bounds the work done. MaxDuration and the context deadline
// bound wall-clock time; exceeding either returns an error wrapping
// recommend.ErrTrainingTimeout. Cancellation returns the context error.
package algorithms
