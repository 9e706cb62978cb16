// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// cancelCheckInterval is how many SGD steps run between context checks
// inside an epoch.
const cancelCheckInterval = 4096

// DefaultSVDConfig returns the default factorization parameters.
func DefaultSVDConfig() recommend.TrainerConfig {
	return recommend.DefaultConfig().Trainer
}

// SVD implements biased matrix factorization trained with stochastic
// gradient descent, the "SVD" of the Netflix Prize literature
// (Funk 2006; Koren, Bell, Volinsky 2009).
//
// The estimate is r_ui = mu + b_u + b_i + q_i . p_u and each observed rating
// updates, with e_ui = r_ui - estimate:
//
//	b_u += lr * (e_ui - reg*b_u)
//	b_i += lr * (e_ui - reg*b_i)
//	p_u += lr * (e_ui*q_i - reg*p_u)
//	q_i += lr * (e_ui*p_u - reg*q_i)
//
// Biases start at zero and factors are drawn from N(0, InitStdDev) using a
// source seeded with Seed: users first, then items, both in first-appearance
// order. Entries are visited in store order every epoch, so a given store and
// configuration always produce a bit-identical model.
type SVD struct {
	BaseAlgorithm
	config recommend.TrainerConfig

	// now is replaceable in tests.
	now func() time.Time
}

// NewSVD creates a new SVD trainer with the given configuration.
// Zero numeric fields take their defaults.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func NewSVD(cfg recommend.TrainerConfig) *SVD {
	def := DefaultSVDConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = def.Factors
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.InitStdDev <= 0 {
		cfg.InitStdDev = def.InitStdDev
	}
	if cfg.RatingMax <= cfg.RatingMin {
		cfg.RatingMin = def.RatingMin
		cfg.RatingMax = def.RatingMax
	}

	return &SVD{
		BaseAlgorithm: NewBaseAlgorithm("svd"),
		config:        cfg,
		now:           time.Now,
	}
}

// Config returns the effective configuration.
func (s *SVD) Config() recommend.TrainerConfig {
	return s.config
}

// Fingerprint implements recommend.Trainer.
func (s *SVD) Fingerprint() string {
	return s.config.Fingerprint()
}

// Train fits a new model to store.
//
//nolint:gocyclo // SGD training loop with budget checks
func (s *SVD) Train(ctx context.Context, store *recommend.RatingStore) (*recommend.FactorModel, error) {
	n := store.Len()
	if n == 0 {
		return nil, fmt.Errorf("svd: %w", recommend.ErrEmptyCorpus)
	}

	cfg := s.config
	start := s.now()
	var deadline time.Time
	if cfg.MaxDuration > 0 {
		deadline = start.Add(cfg.MaxDuration)
	}
	if err := budgetError(ctx, deadline, start, 0, cfg.Epochs); err != nil {
		return nil, err
	}

	// Index users and items in first-appearance order
	userIndex := make(map[string]int)
	itemIndex := make(map[string]int)
	users := make([]int, n)
	items := make([]int, n)
	ratings := make([]float64, n)
	var sum float64

	for j := 0; j < n; j++ {
		e := store.At(j)
		u, ok := userIndex[e.UserID]
		if !ok {
			u = len(userIndex)
			userIndex[e.UserID] = u
		}
		i, ok := itemIndex[e.ItemID]
		if !ok {
			i = len(itemIndex)
			itemIndex[e.ItemID] = i
		}
		users[j] = u
		items[j] = i
		ratings[j] = e.Rating
		sum += e.Rating
	}

	numUsers := len(userIndex)
	numItems := len(itemIndex)
	k := cfg.Factors
	mu := sum / float64(n)

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	pu := make([][]float64, numUsers)
	for u := range pu {
		pu[u] = make([]float64, k)
		for f := 0; f < k; f++ {
			pu[u][f] = rng.NormFloat64() * cfg.InitStdDev
		}
	}
	qi := make([][]float64, numItems)
	for i := range qi {
		qi[i] = make([]float64, k)
		for f := 0; f < k; f++ {
			qi[i][f] = rng.NormFloat64() * cfg.InitStdDev
		}
	}
	bu := make([]float64, numUsers)
	bi := make([]float64, numItems)

	lr := cfg.LearningRate
	reg := cfg.Regularization

	epochs := 0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := budgetError(ctx, deadline, s.now(), epoch, cfg.Epochs); err != nil {
			return nil, err
		}

		for j := 0; j < n; j++ {
			if j > 0 && j%cancelCheckInterval == 0 && ContextCancelled(ctx) {
				return nil, budgetError(ctx, deadline, s.now(), epoch, cfg.Epochs)
			}

			u, i := users[j], items[j]
			pv, qv := pu[u], qi[i]

			var dot float64
			for f := 0; f < k; f++ {
				dot += pv[f] * qv[f]
			}
			e := ratings[j] - (mu + bu[u] + bi[i] + dot)

			bu[u] += lr * (e - reg*bu[u])
			bi[i] += lr * (e - reg*bi[i])

			for f := 0; f < k; f++ {
				puf := pv[f]
				qif := qv[f]
				pv[f] += lr * (e*qif - reg*puf)
				qv[f] += lr * (e*puf - reg*qif)
			}
		}
		epochs++
	}

	finished := s.now()
	elapsed := finished.Sub(start)
	s.markTrained(finished, elapsed)

	return &recommend.FactorModel{
		Algorithm:     s.Name(),
		GlobalBias:    mu,
		UserIndex:     userIndex,
		ItemIndex:     itemIndex,
		UserBias:      bu,
		ItemBias:      bi,
		UserFactors:   pu,
		ItemFactors:   qi,
		Factors:       k,
		Seed:          cfg.Seed,
		InitStdDev:    cfg.InitStdDev,
		Clip:          cfg.ClipPredictions,
		RatingMin:     cfg.RatingMin,
		RatingMax:     cfg.RatingMax,
		Epochs:        epochs,
		Entries:       n,
		StoreHash:     store.ContentHash(),
		TrainedAt:     finished,
		TrainDuration: elapsed,
	}, nil
}
