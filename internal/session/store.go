// Package session keeps one form per browser session for the web surface.
// Sessions are identified by an opaque random id and expire after a period
// of inactivity; expired forms are closed so in-flight requests are
// cancelled.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/form"
)

// ErrClosed is returned once the store has been closed.
var ErrClosed = errors.New("session: store is closed")

// Factory creates the form backing a new session.
type Factory func() (*form.Form, error)

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSizeObserver is called with the session count after every change.
func WithSizeObserver(fn func(int)) Option {
	return func(s *Store) {
		s.onSize = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

type entry struct {
	form      *form.Form
	expiresAt time.Time
}

// Store is an in-memory session table safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	factory  Factory
	now      func() time.Time
	onSize   func(int)
	logger   zerolog.Logger
	closed   bool
}

// New constructs a Store whose sessions live ttl past their last access.
func New(factory Factory, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		logger:   logging.WithComponent("session"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Acquire returns the live form for id, or starts a new session when id is
// unknown or expired. The returned id is the one the caller must persist.
func (s *Store) Acquire(id string) (string, *form.Form, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", nil, false, ErrClosed
	}

	now := s.now()
	if e, ok := s.sessions[id]; ok && id != "" {
		if now.Before(e.expiresAt) {
			e.expiresAt = now.Add(s.ttl)
			return id, e.form, false, nil
		}
		e.form.Close()
		delete(s.sessions, id)
	}

	f, err := s.factory()
	if err != nil {
		return "", nil, false, err
	}
	newID := uuid.NewString()
	s.sessions[newID] = &entry{form: f, expiresAt: now.Add(s.ttl)}
	s.reportLocked()
	s.logger.Debug().Str("session", newID).Msg("session started")
	return newID, f, true, nil
}

// Get returns the live form for id without creating one.
func (s *Store) Get(id string) (*form.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.form, true
}

// Delete ends a session immediately.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.form.Close()
		delete(s.sessions, id)
		s.reportLocked()
	}
}

// Len reports the number of sessions, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CleanupExpired closes and removes expired sessions and returns how many
// were removed.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, e := range s.sessions {
		if now.Before(e.expiresAt) {
			continue
		}
		e.form.Close()
		delete(s.sessions, id)
		count++
	}
	if count > 0 {
		s.reportLocked()
		s.logger.Debug().Int("removed", count).Int("remaining", len(s.sessions)).Msg("expired sessions swept")
	}
	return count
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

// Close ends every session and rejects further Acquire calls.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, e := range s.sessions {
		e.form.Close()
		delete(s.sessions, id)
	}
	s.reportLocked()
}

func (s *Store) reportLocked() {
	if s.onSize != nil {
		s.onSize(len(s.sessions))
	}
}
