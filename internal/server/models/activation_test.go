package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivationToken_State(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Minute)

	tests := []struct {
		name  string
		token ActivationToken
		want  ActivationState
		valid bool
	}{
		{name: "pending", token: ActivationToken{ExpiresAt: now.Add(time.Minute)}, want: ActivationPending, valid: true},
		{name: "expires exactly now", token: ActivationToken{ExpiresAt: now}, want: ActivationExpired},
		{name: "expired", token: ActivationToken{ExpiresAt: now.Add(-time.Second)}, want: ActivationExpired},
		{name: "used before expiry", token: ActivationToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, want: ActivationUsed},
		{name: "used and expired", token: ActivationToken{ExpiresAt: now.Add(-time.Hour), UsedAt: &used}, want: ActivationUsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.State(now))
			assert.Equal(t, tt.valid, tt.token.IsValidAt(now))
		})
	}
}

func TestSession_IsValidAt(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now}

	assert.False(t, s.IsValidAt(now), "expires_at == now is no longer valid")
	assert.True(t, s.IsValidAt(now.Add(-time.Nanosecond)))
}

func TestActivationState_String(t *testing.T) {
	assert.Equal(t, "pending", ActivationPending.String())
	assert.Equal(t, "used", ActivationUsed.String())
	assert.Equal(t, "expired", ActivationExpired.String())
}
