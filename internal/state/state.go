// Package state is the client-side container for server records: the held
// client (projects, purposes) and the membership list. All mutation goes
// through named operations on the store, mirroring how the server feeds data
// back after create calls; there is no update, delete or merge logic.
package state

import (
	"sync"

	"github.com/shauryatech/notifyctl/internal/model"
	"github.com/shauryatech/notifyctl/internal/normalize"
)

// Store owns the mirrored client data for one session.
type Store struct {
	mu                sync.RWMutex
	client            *model.Client
	memberships       []model.Membership
	loading           bool
	membershipLoading bool
	lastErr           string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{memberships: []model.Membership{}}
}

// SetClient normalizes raw and replaces any previously held client wholesale.
// Clears loading and any recorded error.
func (s *Store) SetClient(raw normalize.RawClient) {
	c := normalize.Client(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = &c
	s.loading = false
	s.lastErr = ""
}

// Client returns the held client, if any.
func (s *Store) Client() (model.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return model.Client{}, false
	}
	return *s.client, true
}

// Clear drops the held client, e.g. on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.memberships = []model.Membership{}
	s.loading = false
	s.membershipLoading = false
	s.lastErr = ""
}

// AddProject normalizes raw and appends it to the held client's projects.
// Reports false (no-op) when no client is held.
func (s *Store) AddProject(raw normalize.RawProject) bool {
	p := normalize.Project(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return false
	}
	s.client.Projects = append(s.client.Projects, p)
	return true
}

// AddPurpose appends a purpose to the project with the given id. Reports
// false (no-op) when no client is held or no project matches.
func (s *Store) AddPurpose(projectID string, p model.Purpose) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return false
	}
	for i := range s.client.Projects {
		if s.client.Projects[i].ID == projectID {
			proj := &s.client.Projects[i]
			if proj.Purposes == nil {
				proj.Purposes = []model.Purpose{}
			}
			proj.Purposes = append(proj.Purposes, p)
			return true
		}
	}
	return false
}

// SetMemberships replaces the membership list. Clears membership loading and
// any recorded error.
func (s *Store) SetMemberships(ms []model.Membership) {
	cp := make([]model.Membership, len(ms))
	copy(cp, ms)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = cp
	s.membershipLoading = false
	s.lastErr = ""
}

// AddMembership appends one membership after a successful create.
func (s *Store) AddMembership(m model.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, m)
}

// Memberships returns a copy of the membership list.
func (s *Store) Memberships() []model.Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Membership, len(s.memberships))
	copy(cp, s.memberships)
	return cp
}

// SetLoading flags an in-flight client fetch.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

// Loading reports whether a client fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetMembershipLoading flags an in-flight membership fetch.
func (s *Store) SetMembershipLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membershipLoading = v
}

// MembershipLoading reports whether a membership fetch is in flight.
func (s *Store) MembershipLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.membershipLoading
}

// SetError records a fetch failure and clears the loading flag.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
	s.loading = false
}

// Err returns the last recorded fetch error, empty when none.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
