// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity supplies the opaque user identifier attached to reports.
package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Anonymous is reported when no identifier could be resolved. It is the nil UUID.
const Anonymous = "00000000-0000-0000-0000-000000000000"

// CookieName holds the browser scoped identifier.
const CookieName = "locreport_uid"

// Notify receives a resolved identifier.
type Notify func(id string)

// Provider resolves the current user. Identify calls notify at most once, and
// may do so after returning.
type Provider interface {
	Identify(ctx context.Context, notify Notify)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, notify Notify)

// Identify implements Provider.
func (f ProviderFunc) Identify(ctx context.Context, notify Notify) {
	f(ctx, notify)
}

// Static always yields the same identifier. The empty Static never notifies.
type Static string

// Identify implements Provider.
func (s Static) Identify(_ context.Context, notify Notify) {
	if s != "" {
		notify(string(s))
	}
}

// FromCookie returns a provider yielding the identifier stored in the request
// cookie, if it holds a valid UUID.
func FromCookie(r *http.Request) Provider {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Static("")
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil || id == uuid.Nil {
		return Static("")
	}

	return Static(id.String())
}

// EnsureCookie makes sure the browser carries an identifier cookie, issuing a
// fresh random one when it is missing or invalid. It returns the identifier.
func EnsureCookie(w http.ResponseWriter, r *http.Request, maxAge time.Duration) string {
	var id string

	FromCookie(r).Identify(r.Context(), func(v string) { id = v })

	if id != "" {
		return id
	}

	id = uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
