package sessions

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

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanSession(row *sql.Row) (*models.Session, error) {
	s := &models.Session{}
	if err := row.Scan(&s.ID, &s.Token, &s.UserID, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Create inserts session as given; the caller computes every timestamp.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, token, user_id, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, token, user_id, created_at, updated_at, expires_at
	`
	return scanSession(r.db.QueryRowContext(ctx, query,
		session.ID, session.Token, session.UserID, session.CreatedAt, session.UpdatedAt, session.ExpiresAt))
}

func (r *PostgresRepository) FindValidByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, token, user_id, created_at, updated_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > $2
		LIMIT 1
	`
	return scanSession(r.db.QueryRowContext(ctx, query, token, now))
}

func (r *PostgresRepository) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (*models.Session, error) {
	query := `
		UPDATE sessions SET expires_at = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, token, user_id, created_at, updated_at, expires_at
	`
	return scanSession(r.db.QueryRowContext(ctx, query, id, expiresAt, now))
}
