package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Features travel as a comma separated string so the driver never has to
// encode a text[] parameter.
const returning = `RETURNING id, username, email, password, array_to_string(features, ','), created_at, updated_at`

const selectUser = `SELECT id, username, email, password, array_to_string(features, ','), created_at, updated_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var features string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &features, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Features = splitFeatures(features)
	return u, nil
}

func splitFeatures(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (id, username, email, password, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, string_to_array($5, ','), $6, $7)
		` + returning

	return scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.Password,
		strings.Join(user.Features, ","), user.CreatedAt, user.UpdatedAt))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE LOWER(username) = LOWER($1)`, username))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `UPDATE users SET username = $2, email = $3, password = $4, updated_at = $5
		WHERE id = $1
		` + returning

	return scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.Password, user.UpdatedAt))
}

func (r *PostgresRepository) SetFeatures(ctx context.Context, id uuid.UUID, features []string, now time.Time) (*models.User, error) {
	query := `UPDATE users SET features = string_to_array($2, ','), updated_at = $3
		WHERE id = $1
		` + returning

	return scanUser(r.db.QueryRowContext(ctx, query, id, strings.Join(features, ","), now))
}
