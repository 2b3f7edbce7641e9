// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "not found error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "no results"},
			want: true,
		},
		{
			name: "wrapped not found",
			err:  fmt.Errorf("search: %w", &GeocodingError{Type: ErrorTypeNotFound}),
			want: true,
		},
		{
			name: "decode error",
			err:  &GeocodingError{Type: ErrorTypeDecode, Message: "bad json"},
			want: false,
		},
		{
			name: "plain error mentioning not found",
			err:  errors.New("not found"),
			want: false,
		},
	}, IsNotFoundError)
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("nominatim returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "quota error type",
			err:  &GeocodingError{Type: ErrorTypeQuotaExceeded},
			want: true,
		},
		{
			name: "google wording",
			err:  errors.New("google maps status: OVER_QUERY_LIMIT"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &GeocodingError{Type: ErrorTypeTimeout},
			want: true,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("get: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "client timeout wording",
			err:  errors.New("Client.Timeout exceeded while awaiting headers"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}, IsTimeoutError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadRequest, ErrorTypeInvalidRequest},
		{http.StatusGatewayTimeout, ErrorTypeTimeout},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusInternalServerError, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			got := ClassifyHTTPError(tt.status, "nominatim")
			if got.Type != tt.want {
				t.Errorf("ClassifyHTTPError(%d).Type = %v, want %v", tt.status, got.Type, tt.want)
			}
		})
	}
}

func TestGeocodingErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &GeocodingError{Type: ErrorTypeNetworkError, Message: "request failed", Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("expected errors.Is to find the wrapped error")
	}

	if got, want := err.Error(), "request failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if got, want := ErrorTypeDecode.String(), "decode"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
