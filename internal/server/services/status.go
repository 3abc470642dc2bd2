package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

type StatusService struct {
	tx    dbx.Transactor
	repos repomanager.RepositoryManager
	nowFn func() time.Time
}

func NewStatusService(tx dbx.Transactor, repos repomanager.RepositoryManager) *StatusService {
	return &StatusService{tx: tx, repos: repos, nowFn: time.Now}
}

// Get reports the database figures stamped with the current time. A failing
// database is reported as unavailable, not as an internal error.
func (s *StatusService) Get(ctx context.Context) (*models.Status, error) {
	st, err := s.repos.Status(s.tx.Conn()).Get(ctx)
	if err != nil {
		return nil, common.NewServiceError("The database is unavailable", err)
	}
	st.UpdatedAt = clock(s.nowFn)
	return st, nil
}
