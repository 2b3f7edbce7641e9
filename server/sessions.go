// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hersafety/locreport/form"
)

// ErrSessionNotFound is returned for unknown, closed or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	ctrl     *form.Controller
	lastSeen time.Time
}

// sessionStore keeps one controller per open report page. Sessions idle for
// longer than ttl are closed and forgotten.
type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (s *sessionStore) add(ctrl *form.Controller) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &session{ctrl: ctrl, lastSeen: s.now()}

	return id
}

// get returns the controller and marks the session as active.
func (s *sessionStore) get(id string) (*form.Controller, error) {
	s.mu.Lock()

	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()

		return nil, ErrSessionNotFound
	}

	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.ctrl.Close()

		return nil, ErrSessionNotFound
	}

	sess.lastSeen = now
	s.mu.Unlock()

	return sess.ctrl, nil
}

// remove closes the session controller. It reports whether the session existed.
func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.ctrl.Close()
	}

	return ok
}

// sweep closes expired sessions and returns how many were removed.
func (s *sessionStore) sweep() int {
	var expired []*form.Controller

	s.mu.Lock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess.ctrl)
			delete(s.sessions, id)
		}
	}

	s.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}

	return len(expired)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.ctrl.Close()
	}
}
