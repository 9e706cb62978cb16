// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package recommend implements a latent-factor recommendation flow over
// explicit user ratings.
//
// # Flow
//
// Every request runs the same three steps against an immutable baseline:
//
//  1. Upsert: the caller's ratings are normalized and merged into a copy of
//     the baseline RatingStore. A new user gets the next numeric id; an
//     existing user's rows are replaced.
//  2. Train: a Trainer (see package algorithms) fits a FactorModel to the
//     merged store. Models are cached by store content hash and trainer
//     fingerprint, so repeated requests skip training.
//  3. Rank: unrated items are scored by the model and the best K returned.
//
// # Ratings
//
// Raw ratings arrive as numbers or free text. Normalize maps text such as
// "four", "3.5 stars" or "4/5" to a number and everything else to
// NotARating. PrepareCorpus imputes missing values in a loaded dataset with
// the corpus mean; Upsert rejects them instead.
//
// # Usage
//
//	trainer := algorithms.NewSVD(cfg.Trainer)
//	engine, err := recommend.NewEngine(cfg, trainer, logger,
//	    recommend.WithObserver(metrics.NewRecommendObserver()))
//	if err != nil {
//	    return err
//	}
//	engine.SetBaseline(store, stats)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Ratings: []recommend.ItemRating{
//	        recommend.RateText("Heat", "5"),
//	        recommend.RateText("Alien", "two"),
//	    },
//	})
//
// # Thread Safety
//
// The Engine is safe for concurrent use. The baseline is swapped
// atomically and never mutated, so requests do not lock each other.
// Concurrent cache misses for the same model key share one training run.
package recommend
