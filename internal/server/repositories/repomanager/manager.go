package repomanager

import (
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/activations"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/status"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same code path inside and outside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Activations(db dbx.DBTX) activations.Repository
	Status(db dbx.DBTX) status.Repository
}
