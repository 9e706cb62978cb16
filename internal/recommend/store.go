// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"encoding/binary"
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// RatingEntry is one observed (user, item, rating) triple.
type RatingEntry struct {
	// UserID identifies the rater.
	UserID string `json:"user_id"`

	// ItemID identifies the rated item.
	ItemID string `json:"item_id"`

	// Rating is the normalized rating value.
	Rating float64 `json:"rating"`
}

// RatingStore is an immutable, ordered sequence of rating entries.
//
// Order carries no meaning beyond reproducibility: training iterates entries
// in store order, and ties in ranking are broken by first appearance.
// A nil *RatingStore behaves as an empty store.
type RatingStore struct {
	entries []RatingEntry

	hashOnce sync.Once
	hash     uint64
}

// NewRatingStore returns a store holding a copy of entries.
func NewRatingStore(entries []RatingEntry) *RatingStore {
	cp := make([]RatingEntry, len(entries))
	copy(cp, entries)
	return &RatingStore{entries: cp}
}

// newOwnedStore takes ownership of entries without copying.
func newOwnedStore(entries []RatingEntry) *RatingStore {
	return &RatingStore{entries: entries}
}

// Len returns the number of entries.
func (s *RatingStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// At returns the i-th entry.
func (s *RatingStore) At(i int) RatingEntry {
	return s.entries[i]
}

// Entries returns a copy of all entries in store order.
func (s *RatingStore) Entries() []RatingEntry {
	if s == nil {
		return nil
	}
	cp := make([]RatingEntry, len(s.entries))
	copy(cp, s.entries)
	return cp
}

// Items returns the distinct item ids in first-appearance order.
// This is the item catalog.
func (s *RatingStore) Items() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	items := make([]string, 0)
	for _, e := range s.entries {
		if _, ok := seen[e.ItemID]; ok {
			continue
		}
		seen[e.ItemID] = struct{}{}
		items = append(items, e.ItemID)
	}
	return items
}

// Users returns the distinct user ids in first-appearance order.
func (s *RatingStore) Users() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	users := make([]string, 0)
	for _, e := range s.entries {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		users = append(users, e.UserID)
	}
	return users
}

// HasUser reports whether any entry belongs to userID.
func (s *RatingStore) HasUser(userID string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.entries {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

// UserEntries returns the entries that belong to userID, in store order.
func (s *RatingStore) UserEntries(userID string) []RatingEntry {
	if s == nil {
		return nil
	}
	var out []RatingEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// NextUserID returns 1 + the largest purely numeric user id, or "1" when
// there are none. Non-numeric ids are ignored.
func (s *RatingStore) NextUserID() string {
	var (
		maxID uint64
		found bool
	)
	if s != nil {
		for _, e := range s.entries {
			id, ok := parseNumericID(e.UserID)
			if !ok {
				continue
			}
			if !found || id > maxID {
				maxID = id
				found = true
			}
		}
	}
	if !found {
		return "1"
	}
	return strconv.FormatUint(maxID+1, 10)
}

// parseNumericID accepts ids made only of ASCII digits.
func parseNumericID(id string) (uint64, bool) {
	if id == "" {
		return 0, false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ContentHash returns a 64-bit xxhash of the entries in order.
// Two stores with equal entries in equal order hash equally.
// The value is computed once and memoized.
func (s *RatingStore) ContentHash() uint64 {
	if s == nil {
		return xxhash.Sum64(nil)
	}
	s.hashOnce.Do(func() {
		d := xxhash.New()
		var buf [8]byte
		for _, e := range s.entries {
			_, _ = d.WriteString(e.UserID)
			_, _ = d.Write([]byte{0})
			_, _ = d.WriteString(e.ItemID)
			_, _ = d.Write([]byte{0})
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e.Rating))
			_, _ = d.Write(buf[:])
		}
		s.hash = d.Sum64()
	})
	return s.hash
}

// Mean returns the arithmetic mean of all ratings, or 0 for an empty store.
func (s *RatingStore) Mean() float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, e := range s.entries {
		sum += e.Rating
	}
	return sum / float64(n)
}
