package user_services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/repository/token"
	"github.com/iyunix/asha-chat/internal/repository/user"
	"github.com/iyunix/asha-chat/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) CurrentUser(ctx context.Context, tok string) (*domain.User, error) {
	f.mu.Lock()
	f.calls++
	started, release, err := f.started, f.release, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	u, ok := f.users[tok]
	if !ok {
		return nil, &api.APIError{Type: api.ErrTypeHTTP, Operation: "current_user", StatusCode: http.StatusUnauthorized}
	}
	return u, nil
}

type fixture struct {
	store    *storage.MemoryStore
	tokens   token.Repository
	profiles user.ProfileRepository
	fetcher  *fakeFetcher
	session  *AuthSession
}

func newFixture(cfg Config) *fixture {
	store := storage.NewMemoryStore()
	logger := &logging.NoOpLogger{}
	f := &fixture{
		store:    store,
		tokens:   token.NewTokenRepository(store, logger),
		profiles: user.NewProfileRepository(store),
		fetcher: &fakeFetcher{users: map[string]*domain.User{
			"good": {ID: "u1", Email: "asha@example.com"},
		}},
	}
	f.session = NewAuthSession(f.tokens, f.profiles, f.fetcher, cfg, logger)
	return f
}

func assertLoggedOut(t *testing.T, f *fixture) {
	t.Helper()
	snap := f.session.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.User)
	assert.False(t, snap.IsLoading)
	_, ok := f.tokens.Get(context.Background())
	assert.False(t, ok, "stored token should be cleared")
}

func TestNewSessionStartsUninitialized(t *testing.T) {
	f := newFixture(Config{})
	snap := f.session.Snapshot()
	assert.Equal(t, StateUninitialized, snap.State)
	assert.True(t, snap.IsLoading)
}

func TestInitialize_NoToken(t *testing.T) {
	f := newFixture(Config{})
	require.NoError(t, f.session.Initialize(context.Background()))
	assertLoggedOut(t, f)
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestInitialize_StoredTokenIsVerified(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{})
	require.NoError(t, f.tokens.Set(ctx, "good"))

	require.NoError(t, f.session.Initialize(ctx))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "good", snap.Token)
	assert.Equal(t, "u1", snap.User.ID)
	assert.False(t, snap.IsLoading)

	cached, err := f.session.CachedProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", cached.Email)
}

func TestLogin_UnauthorizedLogsOut(t *testing.T) {
	for _, tok := range []string{"expired", "revoked", "garbage.jwt.value"} {
		t.Run(tok, func(t *testing.T) {
			f := newFixture(Config{})
			err := f.session.Login(context.Background(), tok)
			assert.True(t, IsAuthErrorType(err, ErrTypeAuthInvalid))
			assertLoggedOut(t, f)
		})
	}
}

func TestLogin_TransportFailureLogsOutByDefault(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.err = &api.APIError{Type: api.ErrTypeHTTP, StatusCode: http.StatusInternalServerError}

	err := f.session.Login(context.Background(), "good")
	assert.True(t, IsAuthErrorType(err, ErrTypeAuthTransport))
	assertLoggedOut(t, f)
}

func TestLogin_NetworkFailureLogsOutByDefault(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.err = &api.APIError{Type: api.ErrTypeNetwork, Cause: errors.New("connection refused")}

	err := f.session.Login(context.Background(), "good")
	assert.True(t, IsAuthErrorType(err, ErrTypeAuthTransport))
	assertLoggedOut(t, f)
}

func TestLogin_TransportFailureKeepsTokenWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{KeepTokenOnTransportError: true})
	f.fetcher.err = errors.New("connection reset")

	err := f.session.Login(ctx, "good")
	assert.True(t, IsAuthErrorType(err, ErrTypeAuthTransport))

	snap := f.session.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Equal(t, "good", snap.Token)
	assert.Nil(t, snap.User)
	assert.False(t, snap.IsLoading)
	stored, ok := f.tokens.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "good", stored)

	// the outage ends; a plain refetch recovers the session
	f.fetcher.mu.Lock()
	f.fetcher.err = nil
	f.fetcher.mu.Unlock()
	require.NoError(t, f.session.FetchUser(ctx))
	assert.True(t, f.session.Snapshot().Authenticated())
}

func TestLogin_RejectsEmptyToken(t *testing.T) {
	f := newFixture(Config{})
	err := f.session.Login(context.Background(), "")
	assert.True(t, IsAuthErrorType(err, ErrTypeValidation))
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestLogout_IdempotentFromAnyState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{})

	f.session.Logout(ctx)
	assertLoggedOut(t, f)

	require.NoError(t, f.session.Login(ctx, "good"))
	require.True(t, f.session.Snapshot().Authenticated())

	f.session.Logout(ctx)
	assertLoggedOut(t, f)
	f.session.Logout(ctx)
	assertLoggedOut(t, f)

	_, err := f.session.CachedProfile(ctx)
	assert.ErrorIs(t, err, user.ErrNoProfile)
}

func TestLogoutWinsOverInFlightFetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{})
	f.fetcher.started = make(chan struct{})
	f.fetcher.release = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.session.Login(ctx, "good") }()

	<-f.fetcher.started
	snap := f.session.Snapshot()
	assert.Equal(t, StateChecking, snap.State)
	assert.True(t, snap.IsLoading, "loading while the fetch is outstanding")

	f.session.Logout(ctx)
	close(f.fetcher.release)

	assert.ErrorIs(t, <-done, ErrFetchSuperseded)
	assertLoggedOut(t, f)
}

func TestStaleFetchDoesNotOverwriteNewLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Config{})
	f.fetcher.users["second"] = &domain.User{ID: "u2", Email: "second@example.com"}
	f.fetcher.started = make(chan struct{})
	f.fetcher.release = make(chan struct{})

	first := make(chan error, 1)
	go func() { first <- f.session.Login(ctx, "good") }()
	<-f.fetcher.started

	// second login replaces the token while the first fetch is parked
	second := make(chan error, 1)
	go func() { second <- f.session.Login(ctx, "second") }()
	<-f.fetcher.started

	close(f.fetcher.release)
	require.NoError(t, <-second)
	assert.ErrorIs(t, <-first, ErrFetchSuperseded)

	snap := f.session.Snapshot()
	assert.Equal(t, "second", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u2", snap.User.ID)
}

func TestFetchUserWithoutToken(t *testing.T) {
	f := newFixture(Config{})
	require.NoError(t, f.session.FetchUser(context.Background()))
	assertLoggedOut(t, f)
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(Config{})
	require.NoError(t, f.session.Login(context.Background(), "good"))
	snap := f.session.Snapshot()
	snap.User.Email = "mutated@example.com"
	assert.Equal(t, "asha@example.com", f.session.Snapshot().User.Email)
}
