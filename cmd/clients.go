// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/hersafety/locreport/config"
	"github.com/hersafety/locreport/geocoding"
	"github.com/hersafety/locreport/submission"
	"github.com/hersafety/locreport/utils/httputils"
)

func newHTTPClient(opts *config.Options) *http.Client {
	client := httputils.ClientOptions{
		Timeout:  opts.HTTPTimeout,
		DumpBody: opts.HTTPBodyTrace,
	}

	if opts.UserAgent != "" {
		client.Headers = map[string]string{"User-Agent": opts.UserAgent}
	}

	if opts.HTTPTrace || opts.HTTPBodyTrace {
		client.TraceWriter = os.Stderr
	}

	return httputils.NewClient(client)
}

func newGeocoder(ctx context.Context, opts *config.Options, client *http.Client) (geocoding.Geocoder, error) {
	switch opts.Geocoder {
	case config.GeocoderGoogle:
		apiKey := opts.GoogleAPIKey
		if apiKey == "" {
			log.Println("Google Maps API key is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocoding.APIKeyFromADC(ctx, opts.GoogleProjectID, opts.GoogleKeyName)
			if err != nil {
				return nil, fmt.Errorf("google geocoder needs an API key: %w", err)
			}

			log.Println("Retrieved Google Maps API key via ADC")
		}

		return geocoding.NewGoogleMapsGeocoder(geocoding.GoogleMapsOptions{
			APIKey:     apiKey,
			Country:    opts.Country,
			Region:     opts.GoogleRegion,
			HTTPClient: client,
		}), nil
	case config.GeocoderNominatim:
		return geocoding.NewNominatimGeocoder(geocoding.NominatimOptions{
			Endpoint:   opts.NominatimURL,
			Country:    opts.Country,
			HTTPClient: client,
		}), nil
	default:
		return nil, errors.New("unknown geocoder " + opts.Geocoder)
	}
}

func newSubmitter(opts *config.Options, client *http.Client) *submission.Client {
	return submission.NewClient(submission.Options{
		Endpoint:   opts.SubmitURL,
		HTTPClient: client,
	})
}
