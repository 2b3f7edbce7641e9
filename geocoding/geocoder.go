// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding resolves free-text place names into coordinates using a
// public geocoding service.
package geocoding

import (
	"context"

	"github.com/hersafety/locreport/spatial"
)

// DefaultCountry scopes every free-text search.
const DefaultCountry = "India"

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point
	Provider    string
	DisplayName string
}

// Geocoder resolves a place name to the first matching candidate.
//
// Implementations return a *GeocodingError of type ErrorTypeNotFound when the
// provider has no candidates, and some other *GeocodingError when the lookup
// itself failed.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}
