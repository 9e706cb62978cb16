// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Request structs with go-playground/validator tags.
//
// The validation tags follow the go-playground/validator v10 syntax:
//   - required: field must be present and non-zero
//   - min,max: numeric or string length bounds
//   - notblank: at least one non-space character
//   - omitempty: skip validation if field is empty/zero
//   - dive: validate each slice element

package api

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// RecommendationRequest is the body of POST /api/v1/recommendations.
//
// Fields:
//   - UserID: existing user to re-rate; empty means a new user
//   - Ratings: the user's complete set of ratings
//   - TopK: number of items to return (engine default when 0)
type RecommendationRequest struct {
	UserID  string        `json:"user_id,omitempty" validate:"omitempty,notblank,max=256"`
	Ratings []RatingInput `json:"ratings" validate:"required,min=1,dive"`
	TopK    int           `json:"top_k,omitempty" validate:"omitempty,min=1"`
}

// RatingInput is one rated item in a request.
type RatingInput struct {
	Item   string    `json:"item" validate:"required,notblank,max=512"`
	Rating RawRating `json:"rating"`
}

// RawRating holds a rating as the client sent it: a JSON number or a string
// such as "4 stars" or "3/5". Null and a missing field leave it empty, which
// the engine rejects as an invalid rating.
type RawRating struct {
	text    string
	value   float64
	numeric bool
	present bool
}

// UnmarshalJSON accepts a number, a string or null.
func (r *RawRating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = RawRating{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawRating{text: s, present: true}
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("rating must be a number or a string, got %s", data)
	}
	*r = RawRating{value: v, numeric: true, present: true}
	return nil
}

// MarshalJSON writes the rating back in the form it was received.
func (r RawRating) MarshalJSON() ([]byte, error) {
	switch {
	case !r.present:
		return []byte("null"), nil
	case r.numeric:
		return []byte(strconv.FormatFloat(r.value, 'g', -1, 64)), nil
	default:
		return json.Marshal(r.text)
	}
}

// RawString returns a string form of the rating for logging.
func (r RawRating) RawString() string {
	if r.numeric {
		return strconv.FormatFloat(r.value, 'g', -1, 64)
	}
	return r.text
}

// toItemRating normalizes the input for the engine.
func (in RatingInput) toItemRating() recommend.ItemRating {
	if in.Rating.numeric {
		return recommend.RateValue(in.Item, in.Rating.value)
	}
	return recommend.RateText(in.Item, in.Rating.text)
}

// toEngineRequest converts the body to a recommend.Request.
func (req *RecommendationRequest) toEngineRequest(requestID string) recommend.Request {
	ratings := make([]recommend.ItemRating, len(req.Ratings))
	for i := range req.Ratings {
		ratings[i] = req.Ratings[i].toItemRating()
	}
	return recommend.Request{
		RequestID: requestID,
		UserID:    req.UserID,
		Ratings:   ratings,
		TopK:      req.TopK,
	}
}

// ListRequest holds the pagination parameters of the list endpoints.
type ListRequest struct {
	Limit  int `validate:"min=1,max=10000"`
	Offset int `validate:"min=0"`
}
