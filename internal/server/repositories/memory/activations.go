package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type ActivationRepository struct {
	s *Store
}

func cloneToken(t models.ActivationToken) *models.ActivationToken {
	if t.UsedAt != nil {
		usedAt := *t.UsedAt
		t.UsedAt = &usedAt
	}
	return &t
}

func (r *ActivationRepository) Create(ctx context.Context, token *models.ActivationToken) (*models.ActivationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.activations[token.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	remember(ctx, r.s.activations, token.ID)
	r.s.activations[token.ID] = *cloneToken(*token)
	return cloneToken(*token), nil
}

func (r *ActivationRepository) FindValidByID(_ context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.activations[id]
	if !ok || !t.IsValidAt(now) {
		return nil, common.ErrorNotFound
	}
	return cloneToken(t), nil
}

// MarkUsed checks and sets under the write lock, so of several concurrent
// callers exactly one wins.
func (r *ActivationRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) (*models.ActivationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.activations[id]
	if !ok || !t.IsValidAt(now) {
		return nil, common.ErrorNotFound
	}
	usedAt := now
	t.UsedAt = &usedAt
	t.UpdatedAt = now
	remember(ctx, r.s.activations, id)
	r.s.activations[id] = t
	return cloneToken(t), nil
}
