// Package memory is the in-memory storage.Store implementation used by the
// test harness (spec §4.7 item 2): the same storage.Tx surface as the
// sqlite backend, operating on in-memory entity maps guarded by a single
// mutex held for the duration of each transaction. This keeps service code
// identical between backends (spec §9 "Dual storage backends").
package memory

import (
	"context"
	"sync"

	"equion/internal/models"
	"equion/internal/storage"
)

// Store is a mutex-guarded in-memory storage.Store.
type Store struct {
	mu sync.Mutex

	users       map[string]*models.User
	usersByName map[string]string // username -> id
	tokens      map[string]string // token -> user id

	sets    map[string]*models.Set
	subsets map[string]*models.Subset

	memberships map[string]*models.Membership // id -> membership
	invites     map[string]*models.Invite
	messages    map[string]*models.Message
	files       map[string]*models.File
}

var _ storage.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		usersByName: make(map[string]string),
		tokens:      make(map[string]string),
		sets:        make(map[string]*models.Set),
		subsets:     make(map[string]*models.Subset),
		memberships: make(map[string]*models.Membership),
		invites:     make(map[string]*models.Invite),
		messages:    make(map[string]*models.Message),
		files:       make(map[string]*models.File),
	}
}

func (s *Store) Close() error { return nil }

// WithTx serializes all transactions behind a single mutex — the in-memory
// analog of the sqlite backend's serializable transactions.
func (s *Store) WithTx(_ context.Context, fn func(storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{s: s})
}

// tx is the storage.Tx view over Store; it does not itself lock since
// WithTx already holds the store mutex for its entire duration.
type tx struct {
	s *Store
}
