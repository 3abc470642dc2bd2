// Package models defines the server-side records persisted in the database
// and the read-only resources reported by the status and migration endpoints.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Password holds the bcrypt hash, never the
// plaintext. Features lists capability names as stored.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceOwnerID makes a user its own owner for self-scoped rules.
func (u *User) ResourceOwnerID() uuid.UUID { return u.ID }
