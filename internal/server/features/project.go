package features

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Features  []string  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserSelfView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Features  []string  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionView struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ActivationTokenView struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}

type MigrationView struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// StatusView carries Version only for principals holding ReadStatusAll.
type StatusView struct {
	UpdatedAt         time.Time `json:"updated_at"`
	Version           *string   `json:"version,omitempty"`
	MaxConnections    int       `json:"max_connections"`
	OpenedConnections int       `json:"opened_connections"`
}

type projector func(p *Principal, resource any) (any, error)

var projectors = map[Feature]projector{
	ReadUser:            projectUser,
	ReadUserSelf:        projectUserSelf,
	ReadSession:         projectSession,
	ReadActivationToken: projectActivationToken,
	ReadMigration:       projectMigrations,
	ReadStatus:          projectStatus,
}

var errOwnerOnly = common.NewForbiddenError(
	"You do not have permission to read this resource",
	"Check that the resource belongs to the logged in user",
)

// Project returns the view of resource that f allows p to see. Only the
// fields of the returned view ever leave the server.
func Project(p *Principal, f Feature, resource any) (any, error) {
	if err := checkCall(p, f); err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, common.NewInternalError(errors.New("resource is missing"))
	}
	fn, ok := projectors[f]
	if !ok {
		return nil, common.NewInternalError(fmt.Errorf("no projection for %s", f))
	}
	return fn(p, resource)
}

func mismatch(f Feature, resource any) error {
	return common.NewInternalError(fmt.Errorf("%s cannot project %T", f, resource))
}

func projectUser(_ *Principal, resource any) (any, error) {
	u, ok := resource.(*models.User)
	if !ok || u == nil {
		return nil, mismatch(ReadUser, resource)
	}
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Features:  cloneStrings(u.Features),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func projectUserSelf(p *Principal, resource any) (any, error) {
	u, ok := resource.(*models.User)
	if !ok || u == nil {
		return nil, mismatch(ReadUserSelf, resource)
	}
	if p.ID != u.ID {
		return nil, errOwnerOnly
	}
	return UserSelfView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Features:  cloneStrings(u.Features),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func projectSession(p *Principal, resource any) (any, error) {
	s, ok := resource.(*models.Session)
	if !ok || s == nil {
		return nil, mismatch(ReadSession, resource)
	}
	if p.ID != s.UserID {
		return nil, errOwnerOnly
	}
	return SessionView{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

func projectActivationToken(_ *Principal, resource any) (any, error) {
	t, ok := resource.(*models.ActivationToken)
	if !ok || t == nil {
		return nil, mismatch(ReadActivationToken, resource)
	}
	v := ActivationTokenView{
		ID:        t.ID,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		ExpiresAt: t.ExpiresAt,
	}
	if t.UsedAt != nil {
		usedAt := *t.UsedAt
		v.UsedAt = &usedAt
	}
	return v, nil
}

func projectMigrations(_ *Principal, resource any) (any, error) {
	ms, ok := resource.([]models.Migration)
	if !ok {
		return nil, mismatch(ReadMigration, resource)
	}
	out := make([]MigrationView, len(ms))
	for i, m := range ms {
		out[i] = MigrationView{Path: m.Path, Name: m.Name, Timestamp: m.Timestamp}
	}
	return out, nil
}

func projectStatus(p *Principal, resource any) (any, error) {
	s, ok := resource.(*models.Status)
	if !ok || s == nil {
		return nil, mismatch(ReadStatus, resource)
	}
	v := StatusView{
		UpdatedAt:         s.UpdatedAt,
		MaxConnections:    s.MaxConnections,
		OpenedConnections: s.OpenedConnections,
	}
	if p.Features.Has(ReadStatusAll) {
		version := s.Version
		v.Version = &version
	}
	return v, nil
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return append([]string(nil), ss...)
}
