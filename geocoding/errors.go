// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyQuery is returned when there is nothing to search for.
var ErrEmptyQuery = errors.New("empty geocoding query")

// GeocodingError describes why a lookup did not produce a point.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit means the provider throttled us.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded means the quota is exhausted or access was denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout means the lookup ran out of time.
	ErrorTypeTimeout
	// ErrorTypeNotFound means the provider returned no candidates.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest means the provider rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError is a transport failure or an unavailable upstream.
	ErrorTypeNetworkError
	// ErrorTypeDecode means the response could not be parsed.
	ErrorTypeDecode
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:        "unknown",
	ErrorTypeRateLimit:      "rate_limit",
	ErrorTypeQuotaExceeded:  "quota_exceeded",
	ErrorTypeTimeout:        "timeout",
	ErrorTypeNotFound:       "not_found",
	ErrorTypeInvalidRequest: "invalid_request",
	ErrorTypeNetworkError:   "network_error",
	ErrorTypeDecode:         "decode",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorType(err error) (ErrorType, bool) {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsNotFoundError reports whether the lookup succeeded but matched nothing.
// Every other error means the search itself failed.
func IsNotFoundError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeNotFound
}

// IsRateLimitError checks whether the error comes from a throttled provider.
func IsRateLimitError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError checks whether the provider quota is exhausted.
func IsQuotaExceededError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	// Google Maps wording
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError checks whether the lookup timed out.
func IsTimeoutError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps a non-200 provider status to a geocoding error.
func ClassifyHTTPError(statusCode int, provider string) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: provider + " rate limit reached",
		}
	case http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: provider + " quota exceeded or access denied",
		}
	case http.StatusBadRequest:
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: provider + " rejected the request",
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeTimeout,
			Message: fmt.Sprintf("%s timed out (status %d)", provider, statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("%s unavailable (status %d)", provider, statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("%s returned status %d", provider, statusCode),
		}
	}
}

// classifyTransportError wraps errors returned by http.Client.Do.
func classifyTransportError(provider string, err error) *GeocodingError {
	t := ErrorTypeNetworkError
	if errors.Is(err, context.DeadlineExceeded) || IsTimeoutError(err) {
		t = ErrorTypeTimeout
	}

	return &GeocodingError{
		Type:    t,
		Message: provider + " request failed",
		Err:     err,
	}
}
