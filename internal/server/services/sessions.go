package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

// sessionTokenBytes yields a 96 character hex token.
const sessionTokenBytes = 48

// SessionService issues, resolves, renews and ends login sessions.
type SessionService struct {
	tx    dbx.Transactor
	repos repomanager.RepositoryManager
	ttl   time.Duration
	nowFn func() time.Time
}

func NewSessionService(tx dbx.Transactor, repos repomanager.RepositoryManager, ttl time.Duration) *SessionService {
	return &SessionService{tx: tx, repos: repos, ttl: ttl, nowFn: time.Now}
}

// TTL is the lifetime granted on creation and on every renewal.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// ErrNoActiveSession is the single outcome for unknown, expired and ended
// sessions.
func ErrNoActiveSession() *common.Error {
	return common.NewUnauthorizedError(
		"User has no active session",
		"Check that this user is logged in and try again",
	)
}

func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, internalError(err)
	}

	now := clock(s.nowFn)
	session, err := s.repos.Sessions(s.tx.Conn()).Create(ctx, &models.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return nil, internalError(err)
	}
	return session, nil
}

// FindValidByToken resolves token to a session that has not expired yet.
func (s *SessionService) FindValidByToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoActiveSession()
	}
	session, err := s.repos.Sessions(s.tx.Conn()).FindValidByToken(ctx, token, clock(s.nowFn))
	return session, s.translate(err)
}

// Renew restarts the lifetime of the session from now.
func (s *SessionService) Renew(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	now := clock(s.nowFn)
	session, err := s.repos.Sessions(s.tx.Conn()).SetExpiry(ctx, id, now.Add(s.ttl), now)
	return session, s.translate(err)
}

// Expire ends the session by moving its expiry a year into the past.
func (s *SessionService) Expire(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	now := clock(s.nowFn)
	session, err := s.repos.Sessions(s.tx.Conn()).SetExpiry(ctx, id, now.AddDate(-1, 0, 0), now)
	return session, s.translate(err)
}

func (s *SessionService) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return ErrNoActiveSession()
	default:
		return internalError(err)
	}
}
