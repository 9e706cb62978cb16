// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package recommend

import (
	"math"
	"strconv"
	"strings"
)

// Rating is the result of normalizing a raw rating value.
// It is either Numeric or NotARating; the zero value is NotARating.
type Rating struct {
	value float64
	valid bool
}

// Numeric returns a Rating holding v.
func Numeric(v float64) Rating {
	return Rating{value: v, valid: true}
}

// NotARating returns the Rating for values that could not be parsed.
func NotARating() Rating {
	return Rating{}
}

// Value returns the numeric value and whether the rating is Numeric.
func (r Rating) Value() (float64, bool) {
	return r.value, r.valid
}

// IsNumeric reports whether the rating holds a number.
func (r Rating) IsNumeric() bool {
	return r.valid
}

// String returns the numeric value or "NotARating".
func (r Rating) String() string {
	if !r.valid {
		return "NotARating"
	}
	return strconv.FormatFloat(r.value, 'g', -1, 64)
}

// ratingWords maps spelled-out ratings to their numeric value.
var ratingWords = map[string]float64{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// Normalize parses a free-text rating.
//
// The words "one" through "five" are matched case-insensitively. A fraction
// keeps only its numerator, so "2.5/5" yields 2.5. The input is then stripped
// of everything except digits and '.', and the remainder is parsed as a
// float: "4 stars" yields 4. An empty remainder, or one that still does not
// parse ("." or "1.2.3"), yields NotARating. Out-of-scale values are returned
// unchanged.
func Normalize(raw string) Rating {
	s := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := ratingWords[s]; ok {
		return Numeric(v)
	}

	if slash := strings.IndexByte(s, '/'); slash >= 0 {
		s = s[:slash]
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return NotARating()
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return NotARating()
	}
	return NormalizeFloat(v)
}

// NormalizeFloat accepts an already-numeric rating.
// NaN and infinities yield NotARating.
func NormalizeFloat(v float64) Rating {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotARating()
	}
	return Numeric(v)
}

// ItemRating is a single rating supplied by a caller for an item.
type ItemRating struct {
	// Item is the item identifier.
	Item string

	// Raw is the value as supplied, kept for error reporting.
	Raw string

	// Rating is the normalized value.
	Rating Rating
}

// RateText builds an ItemRating from free text.
func RateText(item, raw string) ItemRating {
	return ItemRating{Item: item, Raw: raw, Rating: Normalize(raw)}
}

// RateValue builds an ItemRating from a number.
func RateValue(item string, v float64) ItemRating {
	return ItemRating{
		Item:   item,
		Raw:    strconv.FormatFloat(v, 'g', -1, 64),
		Rating: NormalizeFloat(v),
	}
}
