// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery composes the text to NFC, drops control characters and
// collapses runs of white space so equivalent inputs reach the provider as the
// same query.
func NormalizeQuery(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFC,
			runes.Remove(runes.Predicate(func(r rune) bool {
				return unicode.IsControl(r) && !unicode.IsSpace(r)
			})),
		),
		s,
	)

	return strings.Join(strings.Fields(s), " ")
}

// scopedQuery appends the country qualifier to a normalized query.
func scopedQuery(query, country string) string {
	if country == "" {
		return query
	}

	return query + ", " + country
}
