package features

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/server/models"
)

// Principal is the acting party of a request: an authenticated user with its
// session, or the anonymous principal.
type Principal struct {
	ID       uuid.UUID
	Features Set
	User     *models.User
	Session  *models.Session
}

// Anonymous returns a fresh anonymous principal.
func Anonymous() *Principal {
	return &Principal{Features: NewSet(AnonymousFeatures...)}
}

// Authenticated builds a principal from a user and the session it came with.
// The stored feature names are validated here.
func Authenticated(u *models.User, s *models.Session) (*Principal, error) {
	set, err := ParseSet(u.Features)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: u.ID, Features: set, User: u, Session: s}, nil
}

// IsAnonymous reports whether p carries no user.
func (p *Principal) IsAnonymous() bool {
	return p == nil || p.User == nil
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
