package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// IsValidAt reports whether the session can still authenticate at now.
// Logout and timeout both end up here as an expires_at in the past.
func (s *Session) IsValidAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

func (s *Session) ResourceOwnerID() uuid.UUID { return s.UserID }
