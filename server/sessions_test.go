// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/url"
	"testing"
	"time"

	"github.com/hersafety/locreport/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*sessionStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStore(ttl)
	store.now = clock.now

	return store, clock
}

func mountBlank() *form.Controller {
	return form.Mount(url.Values{}, form.Deps{})
}

func TestSessionStoreGetTouches(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	ctrl := mountBlank()
	id := store.add(ctrl)

	for range 3 {
		clock.advance(45 * time.Second)

		got, err := store.get(id)
		require.NoError(t, err)
		assert.Same(t, ctrl, got)
	}

	assert.False(t, ctrl.Closed())
}

func TestSessionStoreGetExpired(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	ctrl := mountBlank()
	id := store.add(ctrl)

	clock.advance(time.Minute + time.Second)

	_, err := store.get(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, ctrl.Closed())
	assert.Zero(t, store.len())
}

func TestSessionStoreSweep(t *testing.T) {
	store, clock := newTestStore(time.Minute)
	idle := mountBlank()
	store.add(idle)

	clock.advance(50 * time.Second)

	active := mountBlank()
	activeID := store.add(active)

	clock.advance(20 * time.Second)

	assert.Equal(t, 1, store.sweep())
	assert.True(t, idle.Closed())
	assert.False(t, active.Closed())

	_, err := store.get(activeID)
	require.NoError(t, err)
	assert.Zero(t, store.sweep())
}

func TestSessionStoreRemove(t *testing.T) {
	store, _ := newTestStore(time.Minute)
	ctrl := mountBlank()
	id := store.add(ctrl)

	assert.True(t, store.remove(id))
	assert.True(t, ctrl.Closed())
	assert.False(t, store.remove(id))

	_, err := store.get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreCloseAll(t *testing.T) {
	store, _ := newTestStore(time.Minute)
	ctrls := []*form.Controller{mountBlank(), mountBlank(), mountBlank()}

	ids := make(map[string]bool)
	for _, c := range ctrls {
		ids[store.add(c)] = true
	}

	assert.Len(t, ids, len(ctrls), "session ids are unique")

	store.closeAll()

	for _, c := range ctrls {
		assert.True(t, c.Closed())
	}

	assert.Zero(t, store.len())
}
