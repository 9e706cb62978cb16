// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is created on first use and shared; it caches
// struct metadata and is safe for concurrent use.
//
// Fields are reported by their JSON names and full path, so an error on the
// second rating's item reads "ratings[1].item must not be blank".
//
// # Custom Tags
//
//   - notblank: string with at least one non-space character
//
// # Usage
//
//	type recommendationRequest struct {
//	    UserID  string        `json:"user_id,omitempty" validate:"omitempty,notblank,max=256"`
//	    Ratings []ratingInput `json:"ratings" validate:"required,min=1,max=1000,dive"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
