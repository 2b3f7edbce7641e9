// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package submission sends location reports to the remote review endpoint.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hersafety/locreport/spatial"
)

// DefaultEndpoint receives the reports.
const DefaultEndpoint = "https://yashdb18-hersafety.hf.space/app/save_review"

// ErrInvalidReport is returned before any network call when a required field
// is missing.
var ErrInvalidReport = errors.New("invalid report")

var validate = validator.New()

// Report is the record posted to the review endpoint.
type Report struct {
	UserID      string  `json:"userid"      validate:"required"`
	Description string  `json:"description" validate:"required"`
	Lat         float64 `json:"latt"`
	Lng         float64 `json:"long"`
	PageSource  *string `json:"pageSource"`
}

// NewReport builds a report for the given point.
func NewReport(userID, description string, point spatial.Point, pageSource *string) *Report {
	return &Report{
		UserID:      userID,
		Description: description,
		Lat:         point.Lat,
		Lng:         point.Lng,
		PageSource:  pageSource,
	}
}

// Validate checks that the required fields are present.
func (r *Report) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	return nil
}

// StatusError is returned when the endpoint answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "submission rejected: " + e.Status
}

// Options configures a Client.
type Options struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client posts reports. It never retries; callers own deduplication.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a submission client.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:   opts.Endpoint,
		httpClient: opts.HTTPClient,
	}

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}

	return c
}

// Endpoint returns the URL reports are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts the report as JSON. Any 2xx status is a success, other statuses
// yield a *StatusError. The response body is ignored.
func (c *Client) Submit(ctx context.Context, r *Report) error {
	if err := r.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building submission request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting report: %w", err)
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return nil
}
