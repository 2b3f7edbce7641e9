// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package form holds the state of one report page and orchestrates the
// geocoder, the identity provider and the submission client around it.
package form

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/hersafety/locreport/geocoding"
	"github.com/hersafety/locreport/identity"
	"github.com/hersafety/locreport/spatial"
	"github.com/hersafety/locreport/submission"
)

// Messages shown to the user.
const (
	MsgLocationNotFound = "Location not found."
	MsgSearchFailed     = "Search failed. Please try again."
	MsgNoLocation       = "No lat/lng found in URL. Cannot use location."
	MsgMissingFields    = "Please fill all fields and select location."
	MsgSubmitted        = "Report submitted successfully."
	MsgSubmitFailed     = "Failed to submit the report."
	MsgSubmitError      = "An error occurred while submitting."
)

const headerPrefix = "Report a Location - "

// Submitter delivers a report. *submission.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, r *submission.Report) error
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Geocoder  geocoding.Geocoder
	Submitter Submitter
	// Identity is optional. Reports are anonymous until it notifies.
	Identity identity.Provider
}

// State is the page state. Snapshots are copies and safe to keep.
type State struct {
	PageSource    *string        `json:"pageSource"`
	SearchText    string         `json:"searchText"`
	Description   string         `json:"description"`
	Point         *spatial.Point `json:"point"`
	SearchError   string         `json:"searchError"`
	SubmitMessage string         `json:"submitMessage"`
	Submitting    bool           `json:"submitting"`
	UserID        *string        `json:"userId"`
}

// Header is the page title for this state.
func (s State) Header() string {
	if s.PageSource == nil {
		return headerPrefix
	}

	return headerPrefix + *s.PageSource
}

func (s State) clone() State {
	c := s

	if s.PageSource != nil {
		v := *s.PageSource
		c.PageSource = &v
	}

	if s.Point != nil {
		p := *s.Point
		c.Point = &p
	}

	if s.UserID != nil {
		v := *s.UserID
		c.UserID = &v
	}

	return c
}

// Controller owns the state of one page instance from Mount until Close.
//
// Results of lookups and submissions that complete after Close, or after a
// newer search started, are discarded.
type Controller struct {
	geocoder  geocoding.Geocoder
	submitter Submitter

	// lifetime is canceled by Close, aborting in-flight requests.
	lifetime context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	state     State
	epoch     uint64
	searchSeq uint64
	closed    bool
}

// Mount activates a controller for a page opened with the given query
// parameters: page, lat and lng.
func Mount(params url.Values, deps Deps) *Controller {
	lifetime, cancel := context.WithCancel(context.Background())

	c := &Controller{
		geocoder:  deps.Geocoder,
		submitter: deps.Submitter,
		lifetime:  lifetime,
		cancel:    cancel,
	}

	if params.Has("page") {
		page := params.Get("page")
		c.state.PageSource = &page
	}

	if p, ok := spatial.ParsePoint(params.Get("lat"), params.Get("lng")); ok {
		c.state.Point = p
	}

	if deps.Identity != nil {
		deps.Identity.Identify(lifetime, c.identityCallback())
	}

	return c
}

func (c *Controller) identityCallback() identity.Notify {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	return func(id string) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || c.epoch != epoch {
			return
		}

		c.state.UserID = &id
	}
}

// opContext derives the context of a request made on behalf of the caller. It
// is canceled by the caller or by Close, whichever comes first.
func (c *Controller) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)

	return opCtx, func() {
		stop()
		cancel()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.clone()
}

// Header returns the page title.
func (c *Controller) Header() string {
	return c.Snapshot().Header()
}

// SetSearchText replaces the search box text.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.SearchText = text
}

// SetDescription replaces the description text.
func (c *Controller) SetDescription(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Description = text
}

// SelectPoint is the map callback. The last selection wins.
func (c *Controller) SelectPoint(p spatial.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state.Point = &p
}

// SetUserID records the identifier resolved by the identity provider.
func (c *Controller) SetUserID(id string) {
	c.identityCallback()(id)
}

// UseCurrentLocation keeps the current point. Device location is never
// queried, so without a point from the URL or the map it only reports an error.
func (c *Controller) UseCurrentLocation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Point == nil {
		c.state.SearchError = MsgNoLocation
	}
}

// Search resolves the search text and moves the point to the first candidate.
// An empty search text does nothing.
func (c *Controller) Search(ctx context.Context) {
	c.mu.Lock()

	query := c.state.SearchText
	if c.closed || strings.TrimSpace(query) == "" {
		c.mu.Unlock()

		return
	}

	c.searchSeq++
	seq, epoch := c.searchSeq, c.epoch
	c.mu.Unlock()

	opCtx, done := c.opContext(ctx)
	result, err := c.geocoder.Geocode(opCtx, query)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch || c.searchSeq != seq {
		return
	}

	switch {
	case err == nil:
		p := result.Point
		c.state.Point = &p
		c.state.SearchError = ""
	case geocoding.IsNotFoundError(err):
		c.state.SearchError = MsgLocationNotFound
	default:
		log.Printf("Search for %q failed: %v", query, err)

		c.state.SearchError = MsgSearchFailed
	}
}

// Submit sends the report built from the current state. It does nothing while
// a previous submission is outstanding. Missing fields are reported without
// any network call.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()

	if c.closed || c.state.Submitting {
		c.mu.Unlock()

		return
	}

	userID := identity.Anonymous
	if c.state.UserID != nil && *c.state.UserID != "" {
		userID = *c.state.UserID
	}

	if c.state.Description == "" || c.state.Point == nil {
		c.state.SubmitMessage = MsgMissingFields
		c.mu.Unlock()

		return
	}

	report := submission.NewReport(userID, c.state.Description, *c.state.Point, c.state.clone().PageSource)
	c.state.Submitting = true
	epoch := c.epoch
	c.mu.Unlock()

	opCtx, done := c.opContext(ctx)
	err := c.submitter.Submit(opCtx, report)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return
	}

	c.state.Submitting = false

	var statusErr *submission.StatusError

	switch {
	case err == nil:
		c.state.SubmitMessage = MsgSubmitted
		c.state.Description = ""
	case errors.As(err, &statusErr):
		log.Printf("Report rejected: %v", err)

		c.state.SubmitMessage = MsgSubmitFailed
	default:
		log.Printf("Report submission failed: %v", err)

		c.state.SubmitMessage = MsgSubmitError
	}
}

// Close deactivates the controller. In-flight requests are canceled and their
// late results dropped. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return
	}

	c.closed = true
	c.epoch++
	c.mu.Unlock()

	c.cancel()
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
