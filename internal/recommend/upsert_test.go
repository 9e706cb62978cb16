// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"
)

// multiset renders entries as sorted "user|item|rating" keys.
func multiset(entries []RatingEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.UserID + "|" + e.ItemID + "|" + Numeric(e.Rating).String()
	}
	sort.Strings(out)
	return out
}

func TestUpsert_NewUser(t *testing.T) {
	t.Parallel()

	base := NewRatingStore([]RatingEntry{
		{UserID: "1", ItemID: "A", Rating: 4},
		{UserID: "7", ItemID: "B", Rating: 2},
		{UserID: "bob", ItemID: "C", Rating: 3},
	})
	ratings := []ItemRating{RateValue("A", 5), RateText("C", "two")}

	got, id, err := Upsert(base, ratings, "", DefaultUpsertOptions())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != "8" {
		t.Errorf("resolved id = %q, want 8", id)
	}
	if got.Len() != base.Len()+2 {
		t.Fatalf("Len() = %d, want %d", got.Len(), base.Len()+2)
	}
	for i := 0; i < base.Len(); i++ {
		if got.At(i) != base.At(i) {
			t.Errorf("existing row %d changed: %+v -> %+v", i, base.At(i), got.At(i))
		}
	}
	want := []RatingEntry{{UserID: "8", ItemID: "A", Rating: 5}, {UserID: "8", ItemID: "C", Rating: 2}}
	if tail := got.Entries()[base.Len():]; !reflect.DeepEqual(tail, want) {
		t.Errorf("appended rows = %+v, want %+v", tail, want)
	}
}

func TestUpsert_ReplacesExistingUser(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())
	ratings := []ItemRating{RateValue("C", 4)}

	got, id, err := Upsert(base, ratings, "U2", DefaultUpsertOptions())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if id != "U2" {
		t.Errorf("resolved id = %q, want U2", id)
	}

	rows := got.UserEntries("U2")
	if len(rows) != len(ratings) {
		t.Fatalf("U2 has %d rows, want %d (replace, not merge)", len(rows), len(ratings))
	}
	if rows[0].ItemID != "C" || rows[0].Rating != 4 {
		t.Errorf("U2 row = %+v", rows[0])
	}
	if !reflect.DeepEqual(got.UserEntries("U1"), base.UserEntries("U1")) {
		t.Error("other users must be untouched")
	}
}

func TestUpsert_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())
	before := base.Entries()
	hash := base.ContentHash()

	if _, _, err := Upsert(base, []ItemRating{RateValue("A", 2)}, "U1", DefaultUpsertOptions()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Upsert(base, []ItemRating{RateValue("A", 2)}, "", DefaultUpsertOptions()); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(base.Entries(), before) {
		t.Error("input store was modified")
	}
	if NewRatingStore(base.Entries()).ContentHash() != hash {
		t.Error("input store content changed")
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())
	ratings := []ItemRating{RateValue("A", 3), RateValue("C", 5)}

	once, id, err := Upsert(base, ratings, "U1", DefaultUpsertOptions())
	if err != nil {
		t.Fatal(err)
	}
	twice, id2, err := Upsert(once, ratings, id, DefaultUpsertOptions())
	if err != nil {
		t.Fatal(err)
	}
	if id != id2 {
		t.Errorf("ids differ: %q vs %q", id, id2)
	}
	if !reflect.DeepEqual(multiset(once.Entries()), multiset(twice.Entries())) {
		t.Errorf("second upsert changed the multiset:\n%v\n%v", multiset(once.Entries()), multiset(twice.Entries()))
	}
}

func TestUpsert_InvalidRatingIsAllOrNothing(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())

	tests := []struct {
		name    string
		ratings []ItemRating
		opts    UpsertOptions
	}{
		{
			name:    "unparseable text",
			ratings: []ItemRating{RateValue("A", 4), RateText("B", "great")},
			opts:    DefaultUpsertOptions(),
		},
		{
			name:    "nan",
			ratings: []ItemRating{RateValue("A", math.NaN())},
			opts:    DefaultUpsertOptions(),
		},
		{
			name:    "infinity",
			ratings: []ItemRating{RateValue("A", 4), RateValue("B", math.Inf(1))},
			opts:    DefaultUpsertOptions(),
		},
		{
			name:    "above scale",
			ratings: []ItemRating{RateValue("A", 6)},
			opts:    DefaultUpsertOptions(),
		},
		{
			name:    "zero rating below scale",
			ratings: []ItemRating{RateText("A", "0")},
			opts:    DefaultUpsertOptions(),
		},
		{
			name:    "empty item",
			ratings: []ItemRating{RateValue("  ", 3)},
			opts:    UpsertOptions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, id, err := Upsert(base, tt.ratings, "U1", tt.opts)
			if !errors.Is(err, ErrInvalidRating) {
				t.Fatalf("error = %v, want ErrInvalidRating", err)
			}
			var re *RatingError
			if !errors.As(err, &re) {
				t.Errorf("error should be a *RatingError, got %T", err)
			}
			if got != nil || id != "" {
				t.Error("no store or id may be returned on failure")
			}
		})
	}
}

func TestUpsert_RangeNotEnforcedWhenDisabled(t *testing.T) {
	t.Parallel()

	got, _, err := Upsert(nil, []ItemRating{RateValue("A", 9)}, "", UpsertOptions{})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.At(0).Rating != 9 {
		t.Errorf("rating = %v, want 9", got.At(0).Rating)
	}
}

func TestUpsert_UnknownUserPolicy(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())
	ratings := []ItemRating{RateValue("A", 4)}

	got, id, err := Upsert(base, ratings, "ghost", UpsertOptions{UnknownUser: UnknownUserPermissive})
	if err != nil {
		t.Fatalf("permissive Upsert() error = %v", err)
	}
	if id != "ghost" || got.Len() != base.Len()+1 {
		t.Errorf("permissive: id = %q, len = %d", id, got.Len())
	}

	_, _, err = Upsert(base, ratings, "ghost", UpsertOptions{UnknownUser: UnknownUserStrict})
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("strict error = %v, want ErrUnknownUser", err)
	}

	if _, _, err := Upsert(base, ratings, "U1", UpsertOptions{UnknownUser: UnknownUserStrict}); err != nil {
		t.Errorf("strict with known user error = %v", err)
	}
}

func TestUpsert_DuplicateItemsLastWins(t *testing.T) {
	t.Parallel()

	ratings := []ItemRating{RateValue("A", 2), RateValue("B", 3), RateValue("A", 5)}
	got, id, err := Upsert(nil, ratings, "", DefaultUpsertOptions())
	if err != nil {
		t.Fatal(err)
	}

	want := []RatingEntry{
		{UserID: id, ItemID: "A", Rating: 5},
		{UserID: id, ItemID: "B", Rating: 3},
	}
	if !reflect.DeepEqual(got.Entries(), want) {
		t.Errorf("entries = %+v, want %+v", got.Entries(), want)
	}
}

func TestUpsert_TrimsIDs(t *testing.T) {
	t.Parallel()

	base := NewRatingStore(exampleEntries())
	got, id, err := Upsert(base, []ItemRating{RateValue(" C ", 2)}, " U1 ", DefaultUpsertOptions())
	if err != nil {
		t.Fatal(err)
	}
	if id != "U1" {
		t.Errorf("id = %q, want U1", id)
	}
	if rows := got.UserEntries("U1"); len(rows) != 1 || rows[0].ItemID != "C" {
		t.Errorf("U1 rows = %+v", rows)
	}
}

func TestRatedSet(t *testing.T) {
	t.Parallel()

	set := RatedSet([]ItemRating{RateValue("A", 1), RateValue(" B", 2), RateValue("A", 3)})
	want := map[string]struct{}{"A": {}, "B": {}}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("RatedSet = %v, want %v", set, want)
	}
}
