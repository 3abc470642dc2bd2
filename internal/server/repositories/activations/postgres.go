package activations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanToken(row *sql.Row) (*models.ActivationToken, error) {
	t := &models.ActivationToken{}
	var usedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.UpdatedAt, &t.ExpiresAt, &usedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.ActivationToken) (*models.ActivationToken, error) {
	query := `
		INSERT INTO user_activation_tokens (id, user_id, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, created_at, updated_at, expires_at, used_at
	`
	return scanToken(r.db.QueryRowContext(ctx, query,
		token.ID, token.UserID, token.CreatedAt, token.UpdatedAt, token.ExpiresAt))
}

func (r *PostgresRepository) FindValidByID(ctx context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error) {
	query := `
		SELECT id, user_id, created_at, updated_at, expires_at, used_at
		FROM user_activation_tokens
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2
		LIMIT 1
	`
	return scanToken(r.db.QueryRowContext(ctx, query, id, now))
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error) {
	query := `
		UPDATE user_activation_tokens SET used_at = $2, updated_at = $2
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, user_id, created_at, updated_at, expires_at, used_at
	`
	return scanToken(r.db.QueryRowContext(ctx, query, id, now))
}
