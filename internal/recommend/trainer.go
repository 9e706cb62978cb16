// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import "context"

// Trainer fits a FactorModel to a RatingStore.
//
// Implementations must be deterministic: the same store and configuration
// produce a bit-identical model. Train fails with ErrEmptyCorpus on an empty
// store and with an error wrapping ErrTrainingTimeout when the training
// budget runs out. Plain cancellation returns ctx.Err().
type Trainer interface {
	// Name returns the algorithm identifier.
	Name() string

	// Fingerprint identifies every setting that affects the trained model.
	// Models trained with equal fingerprints on equal stores are identical.
	Fingerprint() string

	// Train fits a new model. It must not retain or modify store.
	Train(ctx context.Context, store *RatingStore) (*FactorModel, error)
}
