// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelrank/internal/logging"
	"github.com/tomtom215/reelrank/internal/middleware"
	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/storage"
)

// UserRatingsResponse is the body of GET /users/{userID}/ratings.
type UserRatingsResponse struct {
	UserID  string                  `json:"user_id"`
	Ratings []recommend.RatingEntry `json:"ratings"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Engine    recommend.EngineStats      `json:"engine"`
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
	UptimeS   float64                    `json:"uptime_seconds"`
}

// Recommend handles POST /api/v1/recommendations.
//
// The body holds the user's complete set of ratings. Without user_id a new
// user is created; with it, the user's stored ratings are replaced for the
// duration of the request. Each rating may be a JSON number or a string
// such as "4", "four" or "3/5".
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	requestID := logging.RequestIDFromContext(ctx)
	logging.Ctx(ctx).Debug().
		Str("user_id", sanitizeLogValue(req.UserID)).
		Int("ratings", len(req.Ratings)).
		Int("top_k", req.TopK).
		Msg("recommendation request")

	resp, err := h.engine.Recommend(ctx, req.toEngineRequest(requestID))
	if err != nil {
		writeRecommendError(w, r, err)
		return
	}

	WriteSuccess(w, r, resp)
}

// Items handles GET /api/v1/items.
// Items are listed in first-appearance order; limit and offset page through them.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.engine.Catalog())
}

// Users handles GET /api/v1/users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.engine.Users())
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, all []string) {
	req := parseListRequest(r)
	if apiErr := validateRequest(&req); apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	page, meta := paginate(all, req)
	NewResponseWriter(w, r).SuccessWithPagination(page, meta)
}

// UserRatings handles GET /api/v1/users/{userID}/ratings.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	rows, ok := h.engine.UserRatings(userID)
	if !ok {
		WriteNotFound(w, r, "user not found")
		return
	}

	WriteSuccess(w, r, UserRatingsResponse{UserID: userID, Ratings: rows})
}

// Models handles GET /api/v1/models.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	if h.models == nil {
		NewResponseWriter(w, r).ServiceUnavailable(errModelStoreDisabled.Error())
		return
	}

	models, err := h.models.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to list models")
		NewResponseWriter(w, r).ServiceUnavailable("model store unavailable")
		return
	}
	if models == nil {
		models = []storage.ModelMetadata{}
	}

	WriteSuccess(w, r, models)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Engine:  h.engine.Stats(),
		UptimeS: time.Since(h.startTime).Seconds(),
	}
	if h.perfMon != nil {
		resp.Endpoints = h.perfMon.GetStats()
	}

	WriteSuccess(w, r, resp)
}
