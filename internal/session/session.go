// Package session holds the signed-in user's credentials.
//
// A Store is the single source of truth for the access/refresh pair and the
// cached display name. It is passed explicitly to the API client and to
// anything that needs to know whether a user is signed in; there is no
// package-level credential state.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tarasboiko2005/AirportAPI/internal/logging"
)

// ErrPartialCredentials is returned by Save when only one token is given.
var ErrPartialCredentials = errors.New("session: access and refresh tokens must be saved together")

// State is the persisted session: a credential pair plus display identity.
// Access and Refresh are either both set or both empty.
type State struct {
	Access   string
	Refresh  string
	Username string
}

func (s State) complete() bool {
	return s.Access != "" && s.Refresh != ""
}

// Backend persists a State.
type Backend interface {
	Load() (State, error)
	Store(State) error
}

// Store guards the in-memory State and writes every change through to its
// Backend. Concurrent writers are last-write-wins.
type Store struct {
	mu      sync.RWMutex
	state   State
	backend Backend
	log     zerolog.Logger
}

// Open loads the persisted state from b. A half-present credential pair on
// disk is discarded.
func Open(b Backend) (*Store, error) {
	st, err := b.Load()
	if err != nil {
		return nil, fmt.Errorf("session.Open: %w", err)
	}
	s := &Store{backend: b, log: logging.With("session")}
	if st.complete() {
		s.state = st
	} else if st.Access != "" || st.Refresh != "" {
		s.log.Warn().Msg("discarding partial credential pair")
		if err := b.Store(State{}); err != nil {
			return nil, fmt.Errorf("session.Open: reset partial state: %w", err)
		}
	}
	return s, nil
}

// NewMemory returns an empty Store backed by process memory only.
func NewMemory() *Store {
	s, _ := Open(&MemoryBackend{}) //nolint:errcheck // memory backend cannot fail
	return s
}

// Save stores a new credential pair, replacing any previous one.
func (s *Store) Save(access, refresh string) error {
	if access == "" || refresh == "" {
		return ErrPartialCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.Access, next.Refresh = access, refresh
	return s.commit(next)
}

// Clear removes both tokens and the cached display name. It is idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == (State{}) {
		return nil
	}
	err := s.commit(State{})
	// Signing out must hold in this process even if the file keeps the pair.
	s.state = State{}
	return err
}

// UpdateAccess replaces the access token after a refresh and leaves the
// refresh token untouched. It reports false, writing nothing, when the pair
// was cleared in the meantime.
func (s *Store) UpdateAccess(access string) (bool, error) {
	if access == "" {
		return false, ErrPartialCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Refresh == "" {
		return false, nil
	}
	next := s.state
	next.Access = access
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// SetUsername caches the display name of the signed-in user.
func (s *Store) SetUsername(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.Username = name
	return s.commit(next)
}

// commit persists next and only then adopts it. It must be called with mu
// held.
func (s *Store) commit(next State) error {
	if err := s.backend.Store(next); err != nil {
		s.log.Error().Err(err).Msg("persist session")
		return fmt.Errorf("session: persist: %w", err)
	}
	s.state = next
	return nil
}

// HasAccess reports whether an access token is present.
func (s *Store) HasAccess() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Access != ""
}

// Authenticated is the session predicate used to gate protected screens and
// commands. An expired but present access token still counts; the request
// pipeline discovers expiry.
func (s *Store) Authenticated() bool {
	return s.HasAccess()
}

// Access returns the current access token.
func (s *Store) Access() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Access, s.state.Access != ""
}

// Refresh returns the current refresh token.
func (s *Store) Refresh() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Refresh, s.state.Refresh != ""
}

// Username returns the cached display name, or "".
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Username
}
