package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivationState is derived from the token timestamps, never stored.
type ActivationState uint8

const (
	ActivationPending ActivationState = iota
	ActivationUsed
	ActivationExpired
)

func (s ActivationState) String() string {
	switch s {
	case ActivationUsed:
		return "used"
	case ActivationExpired:
		return "expired"
	default:
		return "pending"
	}
}

// ActivationToken is the one-time credential mailed after sign up. Its ID is
// the value carried in the activation link.
type ActivationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// State reports the token state at now. Used wins over expired: a consumed
// token stays consumed whatever its remaining lifetime.
func (t *ActivationToken) State(now time.Time) ActivationState {
	switch {
	case t.UsedAt != nil:
		return ActivationUsed
	case !t.ExpiresAt.After(now):
		return ActivationExpired
	default:
		return ActivationPending
	}
}

// IsValidAt reports whether the token may still be consumed at now.
func (t *ActivationToken) IsValidAt(now time.Time) bool {
	return t.State(now) == ActivationPending
}

func (t *ActivationToken) ResourceOwnerID() uuid.UUID { return t.UserID }
