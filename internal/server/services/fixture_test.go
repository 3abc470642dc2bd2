package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/fintab/internal/server/mailer"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

const (
	testSessionTTL    = 30 * 24 * time.Hour
	testActivationTTL = 15 * time.Minute
)

type sentMail struct {
	msgs []mailer.Message
	err  error
}

func (s *sentMail) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

// fixture wires every service over one memory store and a clock the test moves.
type fixture struct {
	now time.Time

	store       *memory.Store
	mail        *sentMail
	credentials *CredentialService
	sessions    *SessionService
	activations *ActivationService
	users       *UserService
	status      *StatusService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:   time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC),
		store: memory.NewStore(),
		mail:  &sentMail{},
	}
	nowFn := func() time.Time { return f.now }
	repos := repomanager.NewMemoryRepositoryManager(f.store)

	f.credentials = NewCredentialService(f.store, repos, bcrypt.MinCost)
	f.sessions = NewSessionService(f.store, repos, testSessionTTL)
	f.sessions.nowFn = nowFn
	f.activations = NewActivationService(f.store, repos, testActivationTTL, f.mail, "Fintab <contato@fintab.com.br>", "https://fintab.com.br/")
	f.activations.nowFn = nowFn
	f.users = NewUserService(f.store, repos, f.credentials)
	f.users.nowFn = nowFn
	f.status = NewStatusService(f.store, repos)
	f.status.nowFn = nowFn
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@fintab.com.br",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return u
}
