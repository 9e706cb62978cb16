// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest number of candidates handed to one scoring goroutine.
const minChunk = 256

// ScoredItem is a ranked candidate.
type ScoredItem struct {
	// ItemID identifies the item.
	ItemID string `json:"item_id"`

	// Score is the predicted rating.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the result.
	Rank int `json:"rank"`
}

// Candidates returns the store's distinct items, in first-appearance order,
// minus the items in rated.
func Candidates(store *RatingStore, rated map[string]struct{}) []string {
	items := store.Items()
	out := items[:0]
	for _, item := range items {
		if _, ok := rated[item]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Rank scores every candidate for userID and returns the best k, highest
// predicted rating first. Equal scores keep first-appearance order.
//
// Candidates without learned item factors are skipped. When nothing is left
// to score Rank fails with ErrNoCandidates. Scoring runs in up to workers
// goroutines; results are written by index so the output does not depend on
// scheduling. k <= 0 returns every scored candidate.
func Rank(ctx context.Context, model *FactorModel, store *RatingStore, userID string, rated map[string]struct{}, k, workers int) ([]ScoredItem, error) {
	if model == nil {
		return nil, fmt.Errorf("rank: nil model")
	}

	var rows []int
	var ids []string
	for _, item := range Candidates(store, rated) {
		i, ok := model.ItemIndex[item]
		if !ok {
			continue
		}
		rows = append(rows, i)
		ids = append(ids, item)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("rank user %q: %w", userID, ErrNoCandidates)
	}

	bu, pu := model.UserVector(userID)
	scores := make([]float64, len(ids))

	if workers < 1 {
		workers = 1
	}
	chunk := (len(ids) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += chunk {
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := start; j < end; j++ {
				scores[j] = model.estimate(bu, pu, rows[j])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := make([]int, len(ids))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k <= 0 || k > len(order) {
		k = len(order)
	}
	out := make([]ScoredItem, k)
	for r := 0; r < k; r++ {
		j := order[r]
		out[r] = ScoredItem{ItemID: ids[j], Score: scores[j], Rank: r + 1}
	}
	return out, nil
}

// Recommend returns the single best unrated item for userID.
func Recommend(model *FactorModel, store *RatingStore, userID string, rated map[string]struct{}) (string, error) {
	top, err := Rank(context.Background(), model, store, userID, rated, 1, 1)
	if err != nil {
		return "", err
	}
	return top[0].ItemID, nil
}
