// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hersafety/locreport/spatial"
)

const (
	// DefaultGoogleMapsURL is the Google Maps Geocoding API endpoint.
	DefaultGoogleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

	providerGoogleMaps = "google_maps"
)

// GoogleMapsOptions configures a GoogleMapsGeocoder.
type GoogleMapsOptions struct {
	APIKey string

	// Endpoint defaults to DefaultGoogleMapsURL.
	Endpoint string

	// Country is appended to every query. Empty disables scoping.
	Country string

	// Region is the ccTLD used to bias results, e.g. "in".
	Region string

	// HTTPClient defaults to a client with a 10 seconds timeout.
	HTTPClient *http.Client
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	endpoint   string
	country    string
	region     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(opts GoogleMapsOptions) *GoogleMapsGeocoder {
	g := &GoogleMapsGeocoder{
		apiKey:     opts.APIKey,
		endpoint:   opts.Endpoint,
		country:    opts.Country,
		region:     opts.Region,
		httpClient: opts.HTTPClient,
	}

	if g.endpoint == "" {
		g.endpoint = DefaultGoogleMapsURL
	}

	if g.httpClient == nil {
		g.httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return g
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// classifyGoogleStatus maps the API level status of a 200 response.
func classifyGoogleStatus(status, message string) *GeocodingError {
	t := ErrorTypeUnknown

	switch status {
	case "ZERO_RESULTS":
		t = ErrorTypeNotFound
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		t = ErrorTypeQuotaExceeded
	case "REQUEST_DENIED", "INVALID_REQUEST":
		t = ErrorTypeInvalidRequest
	}

	msg := "google maps status: " + status
	if message != "" {
		msg += " (" + message + ")"
	}

	return &GeocodingError{Type: t, Message: msg}
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string) (*Result, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("address", scopedQuery(query, g.country))
	params.Set("key", g.apiKey)

	if g.region != "" {
		params.Set("region", g.region)
	}

	reqURL := g.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "building google maps request",
			Err:     err,
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(providerGoogleMaps, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, providerGoogleMaps)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeDecode,
			Message: "decoding google maps response",
			Err:     err,
		}
	}

	if gmResp.Status != "OK" {
		return nil, classifyGoogleStatus(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for location: %s", query),
		}
	}

	result := gmResp.Results[0]

	return &Result{
		Point: spatial.Point{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		},
		Provider:    providerGoogleMaps,
		DisplayName: result.FormattedAddress,
	}, nil
}
