// Package repo is used for performing database repository operations.
package repo

import (
	"database/sql"

	"playlistarr/internal/contracts"
)

// Store holds the database variable and its sub-stores.
type Store struct {
	db           *sql.DB
	sessionStore *SessionStore
}

// InitStores injects the database into the store methods.
func InitStores(db *sql.DB) *Store {
	return &Store{
		db:           db,
		sessionStore: GetSessionStore(db),
	}
}

// SessionStore with pointer receiver.
func (s *Store) SessionStore() contracts.SessionStore {
	return s.sessionStore
}
