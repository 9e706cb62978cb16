// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"math"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
)

// FactorModel is a trained biased matrix factorization model.
//
// A prediction is GlobalBias + UserBias[u] + ItemBias[i] + dot(UserFactors[u], ItemFactors[i]).
// Rows are addressed through UserIndex and ItemIndex, which are built in
// first-appearance order of the training store. All fields are exported so
// the model can be gob-encoded by the persistent model store.
//
// A FactorModel is read-only after training and safe for concurrent use.
type FactorModel struct {
	// Algorithm names the trainer that produced the model.
	Algorithm string

	// GlobalBias is the mean rating of the training store (mu).
	GlobalBias float64

	UserIndex   map[string]int
	ItemIndex   map[string]int
	UserBias    []float64
	ItemBias    []float64
	UserFactors [][]float64
	ItemFactors [][]float64

	// Factors is the latent dimension.
	Factors int

	// Seed and InitStdDev reproduce the init vector of unseen users.
	Seed       int64
	InitStdDev float64

	// Clip enables clipping predictions to [RatingMin, RatingMax].
	Clip      bool
	RatingMin float64
	RatingMax float64

	// Epochs is the number of epochs completed.
	Epochs int

	// Entries is the number of store entries the model was trained on.
	Entries int

	// StoreHash is the content hash of the training store.
	StoreHash uint64

	// TrainedAt is when training finished.
	TrainedAt time.Time

	// TrainDuration is the wall-clock duration of training.
	TrainDuration time.Duration
}

// NumUsers returns the number of users with learned factors.
func (m *FactorModel) NumUsers() int { return len(m.UserFactors) }

// NumItems returns the number of items with learned factors.
func (m *FactorModel) NumItems() int { return len(m.ItemFactors) }

// HasItem reports whether the model learned factors for itemID.
func (m *FactorModel) HasItem(itemID string) bool {
	_, ok := m.ItemIndex[itemID]
	return ok
}

// HasUser reports whether the model learned factors for userID.
func (m *FactorModel) HasUser(userID string) bool {
	_, ok := m.UserIndex[userID]
	return ok
}

// UserVector returns the bias and factor vector for userID.
// Users the model never observed get UnseenFactors and a zero bias.
func (m *FactorModel) UserVector(userID string) (float64, []float64) {
	if u, ok := m.UserIndex[userID]; ok {
		return m.UserBias[u], m.UserFactors[u]
	}
	return 0, m.UnseenFactors(userID)
}

// UnseenFactors returns the deterministic init vector for an id with no
// observations. It is drawn from N(0, InitStdDev) with a source seeded by
// the model seed and the id, so equal inputs always give equal vectors.
func (m *FactorModel) UnseenFactors(id string) []float64 {
	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(m.Seed ^ int64(xxhash.Sum64String(id))))
	v := make([]float64, m.Factors)
	for f := range v {
		v[f] = rng.NormFloat64() * m.InitStdDev
	}
	return v
}

// Predict returns the estimated rating of itemID by userID.
// The second result is false when the model has no factors for itemID.
func (m *FactorModel) Predict(userID, itemID string) (float64, bool) {
	i, ok := m.ItemIndex[itemID]
	if !ok {
		return 0, false
	}
	bu, pu := m.UserVector(userID)
	return m.estimate(bu, pu, i), true
}

// estimate scores item row i for a user given its bias and factors.
func (m *FactorModel) estimate(bu float64, pu []float64, i int) float64 {
	est := m.GlobalBias + bu + m.ItemBias[i] + dot(pu, m.ItemFactors[i])
	if m.Clip {
		est = math.Max(m.RatingMin, math.Min(m.RatingMax, est))
	}
	return est
}

// dot returns the inner product of a and b over their common length.
func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for f := 0; f < n; f++ {
		s += a[f] * b[f]
	}
	return s
}
