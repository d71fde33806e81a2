// Package session holds the authentication state consumed by the rest of the
// application and persists credentials between CLI invocations.
package session

import (
	"sync"

	"github.com/shauryatech/notifyctl/internal/model"
)

// Store is the single owner of authentication state. Authenticated-ness is
// always derived from token and user presence, never stored.
type Store struct {
	mu       sync.RWMutex
	token    string
	clientID string
	user     *model.User
	loading  bool
}

// NewStore returns a store in the initial loading state, before any restore
// attempt has run.
func NewStore() *Store {
	return &Store{loading: true}
}

// Login records a fresh authentication and clears the loading flag.
func (s *Store) Login(token, clientID string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.clientID = clientID
	u := user
	s.user = &u
	s.loading = false
}

// InitializeFromPersistence has the same effect as Login; it is used once at
// startup when valid persisted credentials are found.
func (s *Store) InitializeFromPersistence(token, clientID string, user model.User) {
	s.Login(token, clientID, user)
}

// Logout clears all credentials. Also used when a restore attempt finds
// nothing usable, so the store never hangs in the loading state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clientID = ""
	s.user = nil
	s.loading = false
}

// IsAuthenticated reports whether both a token and a user identity are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Loading reports whether the startup restore has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the bearer token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ClientID returns the authenticated client identifier.
func (s *Store) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// User returns the authenticated user identity, if any.
func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}
