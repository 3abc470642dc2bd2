// Package repomanager provides RepositoryManager implementations for
// PostgreSQL and for the in-process memory store.
package repomanager

import (
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/activations"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/status"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// Activations returns an activations.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Activations(db dbx.DBTX) activations.Repository {
	return activations.NewPostgresRepository(db)
}

// Status returns a status.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Status(db dbx.DBTX) status.Repository {
	return status.NewPostgresRepository(db)
}
