// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"fmt"
	"strings"
)

// UnknownUserPolicy controls how Upsert treats an existing-user id that has
// no rows in the store.
type UnknownUserPolicy string

const (
	// UnknownUserPermissive accepts the id; removing its rows is a no-op and
	// the supplied ratings are stored under it.
	UnknownUserPermissive UnknownUserPolicy = "permissive"

	// UnknownUserStrict rejects the id with ErrUnknownUser.
	UnknownUserStrict UnknownUserPolicy = "strict"
)

// Valid reports whether p is a known policy.
func (p UnknownUserPolicy) Valid() bool {
	return p == UnknownUserPermissive || p == UnknownUserStrict
}

// UpsertOptions configures Upsert.
type UpsertOptions struct {
	// UnknownUser selects the policy for ids absent from the store.
	// The zero value is treated as UnknownUserPermissive.
	UnknownUser UnknownUserPolicy

	// MinRating and MaxRating bound caller-supplied ratings (inclusive).
	// The range is not enforced when MaxRating <= MinRating.
	MinRating float64
	MaxRating float64
}

// DefaultUpsertOptions returns the permissive policy with a 1-5 scale.
func DefaultUpsertOptions() UpsertOptions {
	return UpsertOptions{
		UnknownUser: UnknownUserPermissive,
		MinRating:   1,
		MaxRating:   5,
	}
}

// Upsert returns a new store with userID's ratings replaced by ratings.
//
// With an empty userID a fresh numeric id is allocated (see
// RatingStore.NextUserID) and the ratings are appended. Otherwise every
// existing row for userID is dropped before the ratings are appended, so the
// result holds exactly the supplied set for that user.
//
// The input store is never modified. Validation happens before any row is
// built: a single rejected rating fails the whole call with an error that
// matches ErrInvalidRating. If the same item appears more than once, the last
// value wins and keeps the first position.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func Upsert(store *RatingStore, ratings []ItemRating, userID string, opts UpsertOptions) (*RatingStore, string, error) {
	userID = strings.TrimSpace(userID)

	values, order, err := collectRatings(ratings, opts)
	if err != nil {
		return nil, "", err
	}

	if userID == "" {
		userID = store.NextUserID()
	} else if opts.UnknownUser == UnknownUserStrict && !store.HasUser(userID) {
		return nil, "", fmt.Errorf("upsert user %q: %w", userID, ErrUnknownUser)
	}

	entries := make([]RatingEntry, 0, store.Len()+len(order))
	for i := 0; i < store.Len(); i++ {
		e := store.At(i)
		if e.UserID == userID {
			continue
		}
		entries = append(entries, e)
	}
	for _, item := range order {
		entries = append(entries, RatingEntry{UserID: userID, ItemID: item, Rating: values[item]})
	}

	return newOwnedStore(entries), userID, nil
}

// collectRatings validates ratings and dedupes them by item.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func collectRatings(ratings []ItemRating, opts UpsertOptions) (map[string]float64, []string, error) {
	enforceRange := opts.MaxRating > opts.MinRating
	values := make(map[string]float64, len(ratings))
	order := make([]string, 0, len(ratings))

	for _, r := range ratings {
		item := strings.TrimSpace(r.Item)
		if item == "" {
			return nil, nil, &RatingError{Item: r.Item, Raw: r.Raw, Reason: "item id is empty"}
		}

		v, ok := r.Rating.Value()
		if !ok {
			return nil, nil, &RatingError{Item: item, Raw: r.Raw, Reason: "not a rating"}
		}
		if enforceRange && (v < opts.MinRating || v > opts.MaxRating) {
			return nil, nil, &RatingError{
				Item:   item,
				Raw:    r.Raw,
				Reason: fmt.Sprintf("must be between %g and %g", opts.MinRating, opts.MaxRating),
			}
		}

		if _, seen := values[item]; !seen {
			order = append(order, item)
		}
		values[item] = v
	}

	return values, order, nil
}

// RatedSet returns the set of item ids in ratings.
func RatedSet(ratings []ItemRating) map[string]struct{} {
	set := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		set[strings.TrimSpace(r.Item)] = struct{}{}
	}
	return set
}
