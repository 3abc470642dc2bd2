package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

func requireActivationNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	e := common.AsError(err)
	assert.Equal(t, common.KindNotFound, e.Kind)
	assert.Equal(t, "The activation token was not found or has expired", e.Message)
	assert.Equal(t, "Sign up again", e.Action)
}

func TestActivations_ConsumeOnceAndActivateIdempotently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "ana")
	assert.Equal(t, []string{"read:activation_token"}, u.Features)

	tok, err := f.activations.Create(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, testActivationTTL, tok.ExpiresAt.Sub(tok.CreatedAt))
	assert.Nil(t, tok.UsedAt)

	f.advance(time.Minute)
	used, err := f.activations.MarkUsed(ctx, tok.ID.String())
	require.NoError(t, err)
	require.NotNil(t, used.UsedAt)
	assert.Equal(t, f.now, *used.UsedAt)

	_, err = f.activations.MarkUsed(ctx, tok.ID.String())
	requireActivationNotFound(t, err)

	first, err := f.activations.ActivateUser(ctx, u.ID)
	require.NoError(t, err)
	second, err := f.activations.ActivateUser(ctx, u.ID)
	require.NoError(t, err)

	want := []string{"create:session", "read:session", "update:user"}
	assert.Equal(t, want, first.Features)
	assert.Equal(t, want, second.Features)
}

func TestActivations_FindOneValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.activations.Create(ctx, uuid.New())
	require.NoError(t, err)

	got, err := f.activations.FindOneValid(ctx, tok.ID.String())
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)

	f.advance(testActivationTTL)
	_, err = f.activations.FindOneValid(ctx, tok.ID.String())
	requireActivationNotFound(t, err)

	_, err = f.activations.FindOneValid(ctx, "not-a-uuid")
	requireActivationNotFound(t, err)

	_, err = f.activations.FindOneValid(ctx, uuid.NewString())
	requireActivationNotFound(t, err)
}

func TestActivations_ExpiredCannotBeMarked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.activations.Create(ctx, uuid.New())
	require.NoError(t, err)

	f.advance(testActivationTTL + time.Second)
	_, err = f.activations.MarkUsed(ctx, tok.ID.String())
	requireActivationNotFound(t, err)
}

func TestActivate_Composite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "ana")
	tok, err := f.activations.Create(ctx, u.ID)
	require.NoError(t, err)

	used, err := f.activations.Activate(ctx, tok.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ActivationUsed, used.State(f.now))

	got, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, features.Names(features.ActivatedUserFeatures...), got.Features)

	_, err = f.activations.Activate(ctx, tok.ID.String())
	requireActivationNotFound(t, err)
}

func TestActivate_ForbiddenOnceActivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "ana")

	_, err := f.activations.ActivateUser(ctx, u.ID)
	require.NoError(t, err)
	tok, err := f.activations.Create(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.activations.Activate(ctx, tok.ID.String())
	require.Error(t, err)
	assert.Equal(t, common.KindForbidden, common.KindOf(err))
	assert.Equal(t, "You can no longer use activation tokens", common.AsError(err).Message)

	still, err := f.activations.FindOneValid(ctx, tok.ID.String())
	require.NoError(t, err, "a rejected activation leaves the token unused")
	assert.Nil(t, still.UsedAt)
}

// A failing feature grant must undo the token consumption.
func TestActivate_RollsBackWhenGrantFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	tokID, userID := uuid.New(), uuid.New()
	tokenRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at", "expires_at", "used_at"}).
			AddRow(tokID.String(), userID.String(), now, now, now.Add(time.Minute), nil)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM\s+user_activation_tokens`).WithArgs(tokID, now).WillReturnRows(tokenRow())
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WithArgs(userID).WillReturnRows(
		sqlmock.NewRows([]string{"id", "username", "email", "password", "features", "created_at", "updated_at"}).
			AddRow(userID.String(), "ana", "ana@fintab.com.br", "hash", "read:activation_token", now, now))
	mock.ExpectQuery(`UPDATE\s+user_activation_tokens`).WithArgs(tokID, now).WillReturnRows(tokenRow())
	mock.ExpectQuery(`UPDATE\s+users\s+SET\s+features`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	svc := NewActivationService(dbx.NewSQLTransactor(db), repomanager.NewPostgresRepositoryManager(), testActivationTTL, &sentMail{}, "", "")
	svc.nowFn = func() time.Time { return now }

	_, err = svc.Activate(context.Background(), tokID.String())
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendActivationEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "ana")
	tok, err := f.activations.Create(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, f.activations.SendActivationEmail(ctx, u, tok))
	require.Len(t, f.mail.msgs, 1)

	msg := f.mail.msgs[0]
	assert.Equal(t, "ana@fintab.com.br", msg.To)
	assert.Equal(t, "Fintab <contato@fintab.com.br>", msg.From)
	assert.Contains(t, msg.Text, "https://fintab.com.br/register/activate/"+tok.ID.String())

	f.mail.err = errors.New("relay down")
	err = f.activations.SendActivationEmail(ctx, u, tok)
	assert.Equal(t, common.KindServiceUnavailable, common.KindOf(err))
}
