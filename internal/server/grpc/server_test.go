package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/fintab/internal/logging"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

type harness struct {
	sessions *services.SessionService
	users    *services.UserService
	client   *SessionClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	repos := repomanager.NewMemoryRepositoryManager(store)
	credentials := services.NewCredentialService(store, repos, bcrypt.MinCost)
	h := &harness{
		sessions: services.NewSessionService(store, repos, time.Hour),
		users:    services.NewUserService(store, repos, credentials),
	}

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop(), h.sessions, h.users)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	h.client = NewSessionClient(conn)
	return h
}

// login creates an activated user with a live session.
func (h *harness) login(t *testing.T, username string) *models.Session {
	t.Helper()
	ctx := context.Background()

	u, err := h.users.Create(ctx, services.CreateUserInput{
		Username: username,
		Email:    username + "@fintab.com.br",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	_, err = h.users.SetFeatures(ctx, username, []string{"create:session", "read:session", "update:user"})
	require.NoError(t, err)

	s, err := h.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	return s
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), SessionTokenKey, token)
}

func TestIntrospect(t *testing.T) {
	h := newHarness(t)
	s := h.login(t, "ana")

	out, err := h.client.Introspect(withToken(s.Token))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, s.ID.String(), m["session_id"])
	assert.Equal(t, s.UserID.String(), m["user_id"])
	assert.Equal(t, "ana", m["username"])
	assert.Equal(t, []any{"update:user", "read:session", "create:session"}, m["features"])
	assert.Equal(t, s.ExpiresAt.Format(time.RFC3339Nano), m["expires_at"])
}

func TestIntrospect_DoesNotRenew(t *testing.T) {
	h := newHarness(t)
	s := h.login(t, "ana")

	_, err := h.client.Introspect(withToken(s.Token))
	require.NoError(t, err)

	again, err := h.sessions.FindValidByToken(context.Background(), s.Token)
	require.NoError(t, err)
	assert.True(t, s.ExpiresAt.Equal(again.ExpiresAt))
}

func TestIntrospect_Unauthenticated(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.Introspect(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Introspect(withToken("deadbeef"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "User has no active session", status.Convert(err).Message())

	s := h.login(t, "ana")
	_, err = h.sessions.Expire(context.Background(), s.ID)
	require.NoError(t, err)
	_, err = h.client.Introspect(withToken(s.Token))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthorize(t *testing.T) {
	h := newHarness(t)
	s := h.login(t, "ana")

	tests := []struct {
		name    string
		ctx     context.Context
		feature string
		want    bool
	}{
		{"anonymous create:user", context.Background(), "create:user", true},
		{"anonymous read:session", context.Background(), "read:session", false},
		{"user read:session", withToken(s.Token), "read:session", true},
		{"user create:user", withToken(s.Token), "create:user", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.client.Authorize(tt.ctx, tt.feature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := h.client.Authorize(context.Background(), "delete:everything")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), nil, nil)
	require.Error(t, srv.Run(context.Background()))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestToStatus(t *testing.T) {
	err := toStatus(services.ErrActivationNotFound())
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = toStatus(assert.AnError)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), assert.AnError.Error())
}
