// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"errors"
	"testing"
)

func TestPrepareCorpus(t *testing.T) {
	t.Parallel()

	rows := []RawEntry{
		{User: "1", Item: "Heat", Rating: "five"},
		{User: "1", Item: "Alien", Rating: "n/a"},
		{User: "2", Item: "Heat", Rating: "2 stars"},
		{User: "2", Item: "Up", Rating: ""},
		{User: "3", Item: "Up", Rating: "3.5/5"},
	}

	store, stats, err := PrepareCorpus(rows)
	if err != nil {
		t.Fatalf("PrepareCorpus() error = %v", err)
	}

	// Mean of 5, 2 and 3.5, taken before imputation.
	const mean = 3.5
	if stats.Mean != mean {
		t.Errorf("Mean = %v, want %v", stats.Mean, mean)
	}
	if stats.Entries != 5 || stats.Imputed != 2 || stats.Users != 3 || stats.Items != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if store.Len() != len(rows) {
		t.Fatalf("entry count changed: %d -> %d", len(rows), store.Len())
	}

	want := []float64{5, mean, 2, mean, 3.5}
	for i, w := range want {
		if got := store.At(i).Rating; got != w {
			t.Errorf("entry %d rating = %v, want %v", i, got, w)
		}
	}
	if store.At(1).UserID != "1" || store.At(1).ItemID != "Alien" {
		t.Errorf("row identity not preserved: %+v", store.At(1))
	}
}

func TestPrepareCorpus_Empty(t *testing.T) {
	t.Parallel()

	store, stats, err := PrepareCorpus(nil)
	if err != nil {
		t.Fatalf("PrepareCorpus(nil) error = %v", err)
	}
	if store.Len() != 0 || stats.Entries != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestPrepareCorpus_NoParseableRatings(t *testing.T) {
	t.Parallel()

	_, _, err := PrepareCorpus([]RawEntry{
		{User: "1", Item: "Heat", Rating: "great"},
		{User: "2", Item: "Heat", Rating: ""},
	})
	if !errors.Is(err, ErrInvalidRating) {
		t.Errorf("error = %v, want ErrInvalidRating", err)
	}
}
