package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/smartsales/salesctl/internal/errors"
	"github.com/smartsales/salesctl/internal/testserver"
	"github.com/smartsales/salesctl/session"
	"github.com/smartsales/salesctl/session/credstore"
	credstorefake "github.com/smartsales/salesctl/session/credstore/repofake"
)

const (
	testUsername = "jane"
	testPassword = "password123"
	testEmail    = "jane.doe@example.com"
)

// testFixture holds the stub backend and a session store wired against it.
type testFixture struct {
	server *testserver.Server
	http   *httptest.Server
	creds  *credstorefake.FakeCredStore
	store  *session.Store
}

func setupTestFixture(t *testing.T, options ...testserver.Option) *testFixture {
	t.Helper()

	server := testserver.New(options...)
	server.SeedUser(testUsername, testPassword, testEmail, "Jane", "Doe")

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	creds := credstorefake.NewFakeCredStore()
	store, err := session.New(httpServer.URL, creds)
	require.NoError(t, err)

	return &testFixture{
		server: server,
		http:   httpServer,
		creds:  creds,
		store:  store,
	}
}

func TestNewValidation(t *testing.T) {
	_, err := session.New("", credstorefake.NewFakeCredStore())
	require.Error(t, err)

	_, err = session.New("http://localhost:8000", nil)
	require.Error(t, err)
}

func TestLoginEstablishesSession(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.Equal(t, testUsername, user.Username)
	require.Equal(t, testEmail, user.Email)

	require.Equal(t, session.StatusAuthenticated, f.store.Status())
	require.True(t, f.store.IsAuthenticated())
	require.Equal(t, testUsername, f.store.User().Username)

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.Equal(t, pair.Access, f.store.AccessToken())
}

func TestLoginInvalidCredentialsLeavesSessionUnchanged(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, "wrong password")
	require.Error(t, err)

	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 401, authErr.StatusCode)
	require.Equal(t, "Invalid credentials", authErr.Message)

	require.Equal(t, session.StatusAnonymous, f.store.Status())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())
	require.Zero(t, f.creds.SaveCalls)
}

func TestRegisterEstablishesSession(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.store.Register(context.Background(), session.RegisterParams{
		Username:  "newuser",
		Email:     "new.user@example.com",
		Password:  "password123",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	require.Equal(t, "newuser", user.Username)
	require.Equal(t, session.StatusAuthenticated, f.store.Status())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Register(context.Background(), session.RegisterParams{
		Username: testUsername,
		Email:    testEmail,
		Password: testPassword,
	})
	require.Error(t, err)

	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Username already exists", authErr.Message)
	require.Equal(t, session.StatusAnonymous, f.store.Status())
}

func TestBootstrapWithoutStoredCredentials(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.Bootstrap(context.Background()))
	require.Equal(t, session.StatusAnonymous, f.store.Status())
	require.False(t, f.store.Loading())
}

func TestBootstrapRestoresStoredSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	// A fresh store sharing the credential store models a process restart.
	restarted, err := session.New(f.http.URL, f.creds)
	require.NoError(t, err)

	require.NoError(t, restarted.Bootstrap(context.Background()))
	require.Equal(t, session.StatusAuthenticated, restarted.Status())
	require.Equal(t, testUsername, restarted.User().Username)
	require.False(t, restarted.Loading())
}

func TestBootstrapRejectedCredentialsAreCleared(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.creds.Save(credstore.Pair{Access: "stale access", Refresh: "stale refresh"}))

	require.NoError(t, f.store.Bootstrap(context.Background()))
	require.Equal(t, session.StatusAnonymous, f.store.Status())
	require.Nil(t, f.store.User())
	require.NotZero(t, f.creds.ClearCalls)

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestRefreshReplacesOnlyAccessCredential(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	before, err := f.creds.Load()
	require.NoError(t, err)

	require.NoError(t, f.store.Refresh(context.Background()))
	require.Equal(t, session.StatusAuthenticated, f.store.Status())

	after, err := f.creds.Load()
	require.NoError(t, err)
	require.NotEqual(t, before.Access, after.Access)
	require.Equal(t, before.Refresh, after.Refresh)
}

func TestRefreshCoalescesConcurrentCallers(t *testing.T) {
	f := setupTestFixture(t, testserver.WithRefreshDelay(150*time.Millisecond))

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.store.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), f.server.RefreshCount())
	require.Equal(t, session.StatusAuthenticated, f.store.Status())
}

func TestRefreshWithRevokedTokenForcesLogout(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	f.server.RevokeRefreshTokens()

	err = f.store.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, session.StatusLoggedOut, f.store.Status())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestRefreshWithoutStoredCredential(t *testing.T) {
	f := setupTestFixture(t)

	err := f.store.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	require.Equal(t, session.StatusLoggedOut, f.store.Status())
}

func TestLogoutClearsSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	f.store.Logout(context.Background())
	require.Equal(t, session.StatusLoggedOut, f.store.Status())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestLogoutSucceedsWhenBackendUnreachable(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	f.http.Close()

	f.store.Logout(context.Background())
	require.Equal(t, session.StatusLoggedOut, f.store.Status())

	pair, err := f.creds.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestRefreshPersistFailureForcesLogout(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	f.creds.SaveErr = errors.New("disk full")

	err = f.store.Refresh(context.Background())
	require.Error(t, err)
	require.Equal(t, session.StatusLoggedOut, f.store.Status())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())
	require.NotZero(t, f.creds.ClearCalls)
}

func TestLastAuthenticatedUsesInjectedClock(t *testing.T) {
	f := setupTestFixture(t)

	current := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	store, err := session.New(f.http.URL, f.creds,
		session.WithNowTime(func() time.Time { return current }))
	require.NoError(t, err)

	require.True(t, store.LastAuthenticated().IsZero())

	_, err = store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, store.LastAuthenticated().Equal(current))

	current = current.Add(time.Hour)
	require.NoError(t, store.Refresh(context.Background()))
	require.True(t, store.LastAuthenticated().Equal(current))

	store.Logout(context.Background())
	require.True(t, store.LastAuthenticated().IsZero())
}

// loadSampler wraps a credential store and runs a callback on every Load,
// letting a test observe session state mid-operation.
type loadSampler struct {
	credstore.Store
	sample func()
}

func (l *loadSampler) Load() (credstore.Pair, error) {
	if l.sample != nil {
		l.sample()
	}
	return l.Store.Load()
}

func TestBootstrapLoadingTransitionsExactlyOnce(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	sampler := &loadSampler{Store: f.creds}
	restarted, err := session.New(f.http.URL, sampler)
	require.NoError(t, err)

	var observed []bool
	sampler.sample = func() {
		observed = append(observed, restarted.Loading())
	}

	require.False(t, restarted.Loading())
	require.NoError(t, restarted.Bootstrap(context.Background()))
	require.False(t, restarted.Loading())

	// The credential load happens inside the bootstrap window, where
	// Loading must read true; it never reads true again afterwards.
	require.Equal(t, []bool{true}, observed)
	require.Equal(t, session.StatusAuthenticated, restarted.Status())
}

func TestSetUserKeepsStatus(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	f.store.SetUser(&session.User{ID: 1, Username: testUsername, FirstName: "Janet"})
	require.Equal(t, "Janet", f.store.User().FirstName)
	require.Equal(t, session.StatusAuthenticated, f.store.Status())
}
