// Package storage implements the persistence collaborator on SQLite.
package storage

import (
	"github.com/jmoiron/sqlx"

	"github.com/sevigo/gitreview/internal/core"
)

// sqliteStore implements core.Store on a single sqlx connection.
type sqliteStore struct {
	db *sqlx.DB
}

// NewStore creates a new core.Store backed by the given database.
func NewStore(db *sqlx.DB) core.Store {
	return &sqliteStore{db: db}
}
