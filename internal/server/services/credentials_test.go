package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/fintab/internal/common"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "ana")
	ctx := context.Background()

	got, err := f.credentials.Authenticate(ctx, "ANA@fintab.com.br", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, wrongPassword := f.credentials.Authenticate(ctx, "ana@fintab.com.br", "battery-staple")
	_, unknownEmail := f.credentials.Authenticate(ctx, "nobody@fintab.com.br", "correct-horse")

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		assert.Equal(t, common.KindUnauthorized, common.KindOf(err))
		assert.Equal(t, "The authentication data does not match", common.AsError(err).Message)
	}
}

func TestHashPassword(t *testing.T) {
	f := newFixture(t)

	h, err := f.credentials.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", h)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("correct-horse")))
}

func TestNewCredentialService_ClampsCost(t *testing.T) {
	s := NewCredentialService(nil, nil, 99)
	assert.Equal(t, bcrypt.DefaultCost, s.cost)
}
