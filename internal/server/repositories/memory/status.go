package memory

import (
	"context"

	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// StatusRepository describes the store in the shape of a database status.
type StatusRepository struct {
	s *Store
}

func (r *StatusRepository) Get(_ context.Context) (*models.Status, error) {
	return &models.Status{Version: "memory", MaxConnections: 1, OpenedConnections: 1}, nil
}
