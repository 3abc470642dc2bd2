package admin

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

type stubMigrator struct {
	pending []models.Migration
	err     error
}

func (m *stubMigrator) ListPending(context.Context) ([]models.Migration, error) {
	return m.pending, m.err
}

func (m *stubMigrator) RunPending(context.Context) ([]models.Migration, error) {
	applied := m.pending
	m.pending = nil
	return applied, m.err
}

func newUserService() *services.UserService {
	store := memory.NewStore()
	repos := repomanager.NewMemoryRepositoryManager(store)
	return services.NewUserService(store, repos, services.NewCredentialService(store, repos, bcrypt.MinCost))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(newUserService(), &stubMigrator{}, strings.NewReader(""), &out)

	require.ErrorIs(t, app.Run(context.Background(), nil), ErrUsage)
	require.ErrorIs(t, app.Run(context.Background(), []string{"drop-tables"}), ErrUsage)
	require.ErrorIs(t, app.Run(context.Background(), []string{"features"}), ErrUsage)
	assert.Contains(t, out.String(), "usage: fintab-admin")
}

func TestCreateUser(t *testing.T) {
	stubPassword(t, "correct-horse")
	us := newUserService()

	var out bytes.Buffer
	app := NewApp(us, &stubMigrator{}, strings.NewReader("ana\nana@fintab.com.br\n"), &out)
	require.NoError(t, app.Run(context.Background(), []string{"create-user"}))
	assert.Contains(t, out.String(), "created ana")

	u, err := us.FindByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"update:user", "read:session", "create:session"}, u.Features)
}

func TestCreateUser_Invalid(t *testing.T) {
	stubPassword(t, "short")

	var out bytes.Buffer
	app := NewApp(newUserService(), &stubMigrator{}, strings.NewReader("ana\nana@fintab.com.br\n"), &out)
	err := app.Run(context.Background(), []string{"create-user"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "ValidationError: "), err.Error())
}

func TestCreateUser_PasswordError(t *testing.T) {
	old := readPassword
	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	t.Cleanup(func() { readPassword = old })

	var out bytes.Buffer
	app := NewApp(newUserService(), &stubMigrator{}, strings.NewReader("ana\nana@fintab.com.br\n"), &out)
	require.EqualError(t, app.Run(context.Background(), []string{"create-user"}), "not a terminal")
}

func TestSetFeatures(t *testing.T) {
	stubPassword(t, "correct-horse")
	us := newUserService()

	var out bytes.Buffer
	app := NewApp(us, &stubMigrator{}, strings.NewReader("ana\nana@fintab.com.br\n"), &out)
	require.NoError(t, app.Run(context.Background(), []string{"create-user"}))

	require.NoError(t, app.Run(context.Background(), []string{"features", "ana", "read:migration", "create:migration"}))
	assert.Contains(t, out.String(), "ana now has features [read:migration,create:migration]")

	err := app.Run(context.Background(), []string{"features", "ana", "root"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "ValidationError: "), err.Error())

	err = app.Run(context.Background(), []string{"features", "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The username was not found")
}

func TestMigrations(t *testing.T) {
	m := &stubMigrator{pending: []models.Migration{
		{Path: "20250101000000_create_users.sql", Name: "20250101000000_create_users.sql", Timestamp: 20250101000000},
	}}

	var out bytes.Buffer
	app := NewApp(newUserService(), m, strings.NewReader(""), &out)

	require.NoError(t, app.Run(context.Background(), []string{"migrations"}))
	assert.Contains(t, out.String(), "20250101000000\t20250101000000_create_users.sql")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"migrate"}))
	assert.Contains(t, out.String(), "1 migration(s) applied")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"migrations"}))
	assert.Equal(t, "no pending migrations\n", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(nil, nil, strings.NewReader("lastline"), &out)
	got, err := GetSimpleText(app.reader, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)
	assert.Equal(t, "Name?\n> ", out.String())
}
