// Package users declares the persistence contract for user accounts and its
// PostgreSQL implementation.
package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Repository stores users. Lookups return common.ErrorNotFound when nothing
// matches; writes hitting a unique username or email return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update writes username, email, password and updated_at of user.
	Update(ctx context.Context, user *models.User) (*models.User, error)
	// SetFeatures replaces the feature list of the user.
	SetFeatures(ctx context.Context, id uuid.UUID, features []string, now time.Time) (*models.User, error)
}
