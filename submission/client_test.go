// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package submission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hersafety/locreport/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPostsJSON(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")

		data, err := io.ReadAll(r.Body)
		if err == nil {
			_ = json.Unmarshal(data, &gotBody)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	page := "home"
	report := NewReport("user-1", "broken street light", spatial.Point{Lat: 18.52, Lng: 73.85}, &page)

	client := NewClient(Options{Endpoint: srv.URL})
	require.NoError(t, client.Submit(context.Background(), report))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)

	want := map[string]any{
		"userid":      "user-1",
		"description": "broken street light",
		"latt":        18.52,
		"long":        73.85,
		"pageSource":  "home",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestReportNullPageSource(t *testing.T) {
	report := NewReport("u", "d", spatial.Point{Lat: 1, Lng: 2}, nil)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userid":"u","description":"d","latt":1,"long":2,"pageSource":null}`, string(data))
}

func TestSubmitNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Options{Endpoint: srv.URL})
	err := client.Submit(context.Background(), NewReport("u", "d", spatial.Point{}, nil))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	client := NewClient(Options{Endpoint: srv.URL})
	err := client.Submit(context.Background(), NewReport("u", "d", spatial.Point{}, nil))
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestSubmitRejectsMissingFieldsWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Options{Endpoint: srv.URL})

	err := client.Submit(context.Background(), NewReport("u", "", spatial.Point{}, nil))
	require.ErrorIs(t, err, ErrInvalidReport)

	err = client.Submit(context.Background(), NewReport("", "d", spatial.Point{}, nil))
	require.ErrorIs(t, err, ErrInvalidReport)

	assert.Zero(t, calls.Load())
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{})
	assert.Equal(t, DefaultEndpoint, client.Endpoint())
}
