package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type UserRepository struct {
	s *Store
}

func cloneUser(u models.User) *models.User {
	u.Features = append([]string{}, u.Features...)
	return &u
}

// conflicts reports whether another user already holds username or email.
func (r *UserRepository) conflicts(u *models.User) bool {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Username, u.Username) || strings.EqualFold(other.Email, u.Email) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok || r.conflicts(user) {
		return nil, common.ErrorAlreadyExists
	}
	remember(ctx, r.s.users, user.ID)
	r.s.users[user.ID] = *cloneUser(*user)
	return cloneUser(*user), nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if r.conflicts(user) {
		return nil, common.ErrorAlreadyExists
	}
	cur.Username = user.Username
	cur.Email = user.Email
	cur.Password = user.Password
	cur.UpdatedAt = user.UpdatedAt
	remember(ctx, r.s.users, user.ID)
	r.s.users[user.ID] = cur
	return cloneUser(cur), nil
}

func (r *UserRepository) SetFeatures(ctx context.Context, id uuid.UUID, features []string, now time.Time) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Features = append([]string{}, features...)
	cur.UpdatedAt = now
	remember(ctx, r.s.users, id)
	r.s.users[id] = cur
	return cloneUser(cur), nil
}
