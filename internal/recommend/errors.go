// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the recommendation core.
// Callers should match them with errors.Is; most are wrapped with context.
var (
	// ErrInvalidRating indicates a caller-supplied rating that is non-finite,
	// unparseable, or outside the configured rating scale.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrEmptyCorpus indicates there is nothing to train on.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNoCandidates indicates the user has rated every known item.
	ErrNoCandidates = errors.New("no candidates")

	// ErrUnknownUser indicates an existing-user id that is not in the store.
	// Only returned under UnknownUserStrict.
	ErrUnknownUser = errors.New("unknown user")

	// ErrTrainingTimeout indicates the trainer exceeded its wall-clock budget.
	ErrTrainingTimeout = errors.New("training timeout")
)

// RatingError describes a single rejected rating.
// It unwraps to ErrInvalidRating.
type RatingError struct {
	// Item is the item the rating was supplied for.
	Item string

	// Raw is the value as the caller supplied it.
	Raw string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements error.
func (e *RatingError) Error() string {
	return fmt.Sprintf("invalid rating %q for item %q: %s", e.Raw, e.Item, e.Reason)
}

// Unwrap returns ErrInvalidRating.
func (e *RatingError) Unwrap() error {
	return ErrInvalidRating
}
