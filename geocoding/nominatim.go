// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hersafety/locreport/spatial"
	"golang.org/x/time/rate"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap search endpoint.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

	providerNominatim = "nominatim"
)

// NominatimOptions configures a NominatimGeocoder.
type NominatimOptions struct {
	// Endpoint defaults to DefaultNominatimURL.
	Endpoint string

	// Country is appended to every query. Empty disables scoping.
	Country string

	// HTTPClient defaults to a client with a 10 seconds timeout.
	HTTPClient *http.Client

	// Limiter paces outgoing requests. The public instance allows one per second.
	Limiter *rate.Limiter
}

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	endpoint   string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatimGeocoder creates a new Nominatim geocoder.
func NewNominatimGeocoder(opts NominatimOptions) *NominatimGeocoder {
	g := &NominatimGeocoder{
		endpoint:   opts.Endpoint,
		country:    opts.Country,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
	}

	if g.endpoint == "" {
		g.endpoint = DefaultNominatimURL
	}

	if g.httpClient == nil {
		g.httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if g.limiter == nil {
		g.limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	return g
}

type nominatimCandidate struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the first candidate for the query.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*Result, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(providerNominatim, err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", scopedQuery(query, g.country))

	reqURL := g.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "building nominatim request",
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(providerNominatim, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, providerNominatim)
	}

	var candidates []nominatimCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeDecode,
			Message: "decoding nominatim response",
			Err:     err,
		}
	}

	if len(candidates) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for location: %s", query),
		}
	}

	// first result wins, no disambiguation
	first := candidates[0]

	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeDecode,
			Message: "parsing nominatim latitude",
			Err:     err,
		}
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeDecode,
			Message: "parsing nominatim longitude",
			Err:     err,
		}
	}

	return &Result{
		Point:       spatial.Point{Lat: lat, Lng: lng},
		Provider:    providerNominatim,
		DisplayName: first.DisplayName,
	}, nil
}
