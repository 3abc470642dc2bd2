// Package status reads health figures from the database server.
package status

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Repository reports the database part of a status snapshot. UpdatedAt is
// left to the caller.
type Repository interface {
	Get(ctx context.Context) (*models.Status, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (*models.Status, error) {
	st := &models.Status{}

	if err := r.db.QueryRowContext(ctx, `SHOW server_version`).Scan(&st.Version); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var maxConn string
	if err := r.db.QueryRowContext(ctx, `SHOW max_connections`).Scan(&maxConn); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := strconv.Atoi(maxConn)
	if err != nil {
		return nil, fmt.Errorf("max_connections %q: %w", maxConn, err)
	}
	st.MaxConnections = n

	query := `SELECT count(*)::int FROM pg_stat_activity WHERE datname = current_database()`
	if err := r.db.QueryRowContext(ctx, query).Scan(&st.OpenedConnections); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}
