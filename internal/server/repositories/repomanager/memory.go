package repomanager

import (
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/activations"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/status"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/users"
)

// MemoryRepositoryManager vends repositories over one memory.Store. The DBTX
// argument is ignored; the store itself is the Transactor.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: store}
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store.Users()
}

func (m *MemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository {
	return m.store.Sessions()
}

func (m *MemoryRepositoryManager) Activations(dbx.DBTX) activations.Repository {
	return m.store.Activations()
}

func (m *MemoryRepositoryManager) Status(dbx.DBTX) status.Repository {
	return m.store.Status()
}
