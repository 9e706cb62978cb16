// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import "fmt"

// RawEntry is one unparsed row of the backing rating table.
type RawEntry struct {
	User   string
	Item   string
	Rating string
}

// CorpusStats summarizes a prepared corpus.
type CorpusStats struct {
	// Entries is the number of rows kept (always equal to the input count).
	Entries int `json:"entries"`

	// Imputed is the number of rows whose rating was replaced by the mean.
	Imputed int `json:"imputed"`

	// Mean is the mean of the parseable ratings, computed before imputation.
	Mean float64 `json:"mean"`

	// Users is the number of distinct users.
	Users int `json:"users"`

	// Items is the number of distinct items.
	Items int `json:"items"`
}

// PrepareCorpus normalizes every row and builds a RatingStore.
//
// Rows whose rating normalizes to NotARating are kept and given the mean of
// the parseable ratings. The mean is taken once, before any imputation.
// A non-empty input with no parseable rating at all fails with
// ErrInvalidRating, since there is no mean to impute. An empty input yields
// an empty store.
func PrepareCorpus(rows []RawEntry) (*RatingStore, CorpusStats, error) {
	ratings := make([]Rating, len(rows))
	var (
		sum   float64
		valid int
	)
	for i, row := range rows {
		r := Normalize(row.Rating)
		ratings[i] = r
		if v, ok := r.Value(); ok {
			sum += v
			valid++
		}
	}

	if len(rows) > 0 && valid == 0 {
		return nil, CorpusStats{}, fmt.Errorf("prepare corpus: none of %d ratings could be parsed: %w", len(rows), ErrInvalidRating)
	}

	var mean float64
	if valid > 0 {
		mean = sum / float64(valid)
	}

	entries := make([]RatingEntry, len(rows))
	imputed := 0
	for i, row := range rows {
		v, ok := ratings[i].Value()
		if !ok {
			v = mean
			imputed++
		}
		entries[i] = RatingEntry{UserID: row.User, ItemID: row.Item, Rating: v}
	}

	store := newOwnedStore(entries)
	return store, CorpusStats{
		Entries: len(entries),
		Imputed: imputed,
		Mean:    mean,
		Users:   len(store.Users()),
		Items:   len(store.Items()),
	}, nil
}
