// Package store wraps the persistence of the trade ledger and the cash
// balance row. All writes that must be atomic together are run through
// Transaction so a balance update and a ledger append either both land
// or neither does.
package store

import (
	"gorm.io/gorm"
)

// Store provides access to the trades and balances tables.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an opened gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to a database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
