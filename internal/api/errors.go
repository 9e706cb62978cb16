// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/recommend"
)

// errModelStoreDisabled is reported by /models when no store is configured.
var errModelStoreDisabled = errors.New("model store is disabled")

// errorMapping is the HTTP rendering of a recommendation failure.
type errorMapping struct {
	status  int
	code    string
	message string
}

// mapRecommendError translates an engine error into status, code and message.
// Client errors carry the engine's message; server errors get a generic one.
func mapRecommendError(err error) errorMapping {
	switch {
	case errors.Is(err, recommend.ErrInvalidRating):
		return errorMapping{http.StatusBadRequest, ErrCodeInvalidRating, err.Error()}
	case errors.Is(err, recommend.ErrUnknownUser):
		return errorMapping{http.StatusBadRequest, ErrCodeUnknownUser, err.Error()}
	case errors.Is(err, recommend.ErrNoCandidates):
		return errorMapping{http.StatusUnprocessableEntity, ErrCodeNoCandidates, "user has rated every known item"}
	case errors.Is(err, recommend.ErrEmptyCorpus):
		return errorMapping{http.StatusServiceUnavailable, ErrCodeEmptyCorpus, "no ratings are loaded"}
	case errors.Is(err, recommend.ErrTrainingTimeout), errors.Is(err, context.DeadlineExceeded):
		return errorMapping{http.StatusGatewayTimeout, ErrCodeTrainingTimeout, "training did not finish within its time budget"}
	case errors.Is(err, context.Canceled):
		return errorMapping{http.StatusServiceUnavailable, ErrCodeRequestCanceled, "request canceled"}
	default:
		return errorMapping{http.StatusInternalServerError, ErrCodeInternalError, "failed to compute recommendation"}
	}
}

// writeRecommendError writes the envelope for a failed recommendation.
// A *recommend.RatingError adds the offending item to the details.
func writeRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	m := mapRecommendError(err)

	if m.status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("outcome", recommend.Outcome(err)).
			Msg("recommendation failed")
	}

	var details interface{}
	var ratingErr *recommend.RatingError
	if errors.As(err, &ratingErr) {
		details = map[string]string{
			"item":   ratingErr.Item,
			"rating": ratingErr.Raw,
			"reason": ratingErr.Reason,
		}
	}

	NewResponseWriter(w, r).ErrorWithDetails(m.status, m.code, m.message, details)
}
