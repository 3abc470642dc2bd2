package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type SessionRepository struct {
	s *Store
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[session.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	for _, other := range r.s.sessions {
		if other.Token == session.Token {
			return nil, common.ErrorAlreadyExists
		}
	}
	remember(ctx, r.s.sessions, session.ID)
	r.s.sessions[session.ID] = *session
	out := *session
	return &out, nil
}

func (r *SessionRepository) FindValidByToken(_ context.Context, token string, now time.Time) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, s := range r.s.sessions {
		if s.Token == token && s.IsValidAt(now) {
			return &s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *SessionRepository) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt, now time.Time) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s.ExpiresAt = expiresAt
	s.UpdatedAt = now
	remember(ctx, r.s.sessions, id)
	r.s.sessions[id] = s
	return &s, nil
}
