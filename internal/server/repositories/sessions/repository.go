// Package sessions declares the server-side repository contract for login
// sessions and its PostgreSQL implementation.
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Repository stores sessions. Nothing is ever deleted: ending a session moves
// its expiry into the past.
type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)

	// FindValidByToken returns the session holding token whose expiry is
	// after now, or common.ErrorNotFound.
	FindValidByToken(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// SetExpiry moves the expiry of the session and stamps updated_at with now.
	// Unknown ids yield common.ErrorNotFound.
	SetExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (*models.Session, error)
}
