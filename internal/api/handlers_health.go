// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status            string                `json:"status"`
	Version           string                `json:"version"`
	Uptime            float64               `json:"uptime"`
	Baseline          *recommend.CorpusStats `json:"baseline,omitempty"`
	ModelStoreEnabled bool                  `json:"model_store_enabled"`
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, HealthStatus{
		Status:            "alive",
		Version:           h.config.Version,
		Uptime:            time.Since(h.startTime).Seconds(),
		ModelStoreEnabled: h.models != nil,
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only once a non-empty baseline corpus is loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	baseline := h.engine.Stats().Baseline
	status := HealthStatus{
		Status:            "ready",
		Version:           h.config.Version,
		Uptime:            time.Since(h.startTime).Seconds(),
		Baseline:          &baseline,
		ModelStoreEnabled: h.models != nil,
	}

	if baseline.Entries == 0 {
		status.Status = "not_ready"
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable,
			ErrCodeServiceUnavailable, "no ratings are loaded", status)
		return
	}

	WriteSuccess(w, r, status)
}
