// Package activations stores the one-time tokens mailed after sign up.
package activations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.ActivationToken) (*models.ActivationToken, error)

	// FindValidByID returns the token if it is unused and expires after now.
	FindValidByID(ctx context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error)

	// MarkUsed consumes the token in a single compare-and-set: it succeeds
	// only while the token is unused and unexpired at now. A second call for
	// the same id returns common.ErrorNotFound.
	MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error)
}
