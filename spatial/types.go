// Copyright 2025 The HerSafety Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// MaxCellResolution is the finest H3 resolution reported by Cells.
const MaxCellResolution = 15

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParsePoint builds a Point out of two decimal strings, typically the lat and lng
// query parameters of a page. Both values must be present and numeric.
func ParsePoint(lat, lng string) (*Point, bool) {
	la, ok := parseCoordinate(lat)
	if !ok {
		return nil, false
	}

	ln, ok := parseCoordinate(lng)
	if !ok {
		return nil, false
	}

	return &Point{Lat: la, Lng: ln}, true
}

func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Format renders the point with 15 significant digits per coordinate, the way
// the report page shows the selected location.
func (p Point) Format() string {
	return fmt.Sprintf("%#.15g, %#.15g", p.Lat, p.Lng)
}

// Valid reports whether the coordinates are finite and within range.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lng >= -180 && p.Lng <= 180
}

// Equal reports whether both coordinates match exactly.
func (p *Point) Equal(other *Point) bool {
	if p == nil || other == nil {
		return p == other
	}

	return p.Lat == other.Lat && p.Lng == other.Lng
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Cell is the H3 index covering a point at a given resolution.
type Cell struct {
	Resolution int    `json:"resolution"`
	Index      string `json:"index"`
}

// Cells returns the H3 cells containing the point, from resolution 0 up to maxRes.
func (p *Point) Cells(maxRes int) ([]Cell, error) {
	if maxRes < 0 || maxRes > MaxCellResolution {
		return nil, fmt.Errorf("spatial: resolution must be between 0 and %d, got %d", MaxCellResolution, maxRes)
	}

	latLng := h3.NewLatLng(p.Lat, p.Lng)
	cells := make([]Cell, 0, maxRes+1)

	for res := 0; res <= maxRes; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return nil, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		cells = append(cells, Cell{Resolution: res, Index: cell.String()})
	}

	return cells, nil
}
