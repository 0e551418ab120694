package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

type fakeAuth struct {
	loginResp   *api.TokenResponse
	loginErr    error
	profileResp *api.User
	profileErr  error
	logoutCalls int
}

func (f *fakeAuth) Login(_ context.Context, _ api.Credentials) (*api.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Logout(_ context.Context) error {
	f.logoutCalls++
	return nil
}

func (f *fakeAuth) GetProfile(_ context.Context) (*api.User, error) {
	return f.profileResp, f.profileErr
}

var testUser = &api.User{ID: "u-1", Username: "jchen", Name: "Jennifer Chen", Role: "clinician"}

func TestBootstrapWithoutTokenSettlesUnauthenticated(t *testing.T) {
	m := NewManager(Options{Auth: &fakeAuth{}, Tokens: NewMemoryStore()})
	assert.True(t, m.Loading())

	m.Bootstrap(context.Background())

	assert.False(t, m.Loading())
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Err())
}

func TestBootstrapRestoresSessionFromToken(t *testing.T) {
	tokens := NewMemoryStore()
	require.NoError(t, tokens.Save("stored-token"))

	m := NewManager(Options{Auth: &fakeAuth{profileResp: testUser}, Tokens: tokens})
	m.Bootstrap(context.Background())

	assert.False(t, m.Loading())
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "jchen", m.CurrentUser().Username)
}

func TestBootstrapWithStaleTokenClearsIt(t *testing.T) {
	tokens := NewMemoryStore()
	require.NoError(t, tokens.Save("stale-token"))

	auth := &fakeAuth{profileErr: &api.Error{Status: 401, Detail: "Could not validate credentials"}}
	m := NewManager(Options{Auth: auth, Tokens: tokens})
	m.Bootstrap(context.Background())

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, ErrSessionExpired, m.Err())
	_, has := tokens.Token()
	assert.False(t, has)
}

func TestLoginStoresTokenThenFetchesProfile(t *testing.T) {
	tokens := NewMemoryStore()
	auth := &fakeAuth{
		loginResp:   &api.TokenResponse{AccessToken: "fresh-token", TokenType: "bearer"},
		profileResp: testUser,
	}
	m := NewManager(Options{Auth: auth, Tokens: tokens})

	require.NoError(t, m.Login(context.Background(), api.Credentials{Username: "jchen", Password: "pw"}))

	assert.True(t, m.IsAuthenticated())
	tok, has := tokens.Token()
	assert.True(t, has)
	assert.Equal(t, "fresh-token", tok)
}

func TestLoginRollsBackTokenWhenProfileFails(t *testing.T) {
	tokens := NewMemoryStore()
	auth := &fakeAuth{
		loginResp:  &api.TokenResponse{AccessToken: "doomed-token"},
		profileErr: errors.New("profile unavailable"),
	}
	m := NewManager(Options{Auth: auth, Tokens: tokens})

	err := m.Login(context.Background(), api.Credentials{Username: "jchen", Password: "pw"})
	require.Error(t, err)

	assert.False(t, m.IsAuthenticated())
	_, has := tokens.Token()
	assert.False(t, has)
}

func TestLoginFailureSurfacesServerDetail(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.Error{Status: 401, Detail: "Incorrect username or password"}}
	m := NewManager(Options{Auth: auth, Tokens: NewMemoryStore()})

	err := m.Login(context.Background(), api.Credentials{Username: "jchen", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", m.Err())
	assert.False(t, m.Loading())
}

func TestLogoutDropsIdentityAndToken(t *testing.T) {
	tokens := NewMemoryStore()
	require.NoError(t, tokens.Save("tok"))
	auth := &fakeAuth{profileResp: testUser}
	m := NewManager(Options{Auth: auth, Tokens: tokens})
	m.Bootstrap(context.Background())
	require.True(t, m.IsAuthenticated())

	m.Logout(context.Background())

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, auth.logoutCalls)
	_, has := tokens.Token()
	assert.False(t, has)
}

func TestHandleUnauthorizedEndsSessionOnce(t *testing.T) {
	tokens := NewMemoryStore()
	require.NoError(t, tokens.Save("tok"))
	m := NewManager(Options{Auth: &fakeAuth{profileResp: testUser}, Tokens: tokens})
	m.Bootstrap(context.Background())
	require.True(t, m.IsAuthenticated())

	notifications := 0
	m.Subscribe(func() { notifications++ })

	m.HandleUnauthorized()
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, ErrSessionExpired, m.Err())
	assert.Equal(t, 1, notifications)

	// Already signed out: no further state change, no further notify.
	m.HandleUnauthorized()
	assert.Equal(t, 1, notifications)
}

func TestIsAuthenticatedTracksUserPresence(t *testing.T) {
	m := NewManager(Options{Auth: &fakeAuth{}, Tokens: NewMemoryStore()})
	assert.Equal(t, m.CurrentUser() != nil, m.IsAuthenticated())

	m.setState(testUser, false, "")
	assert.Equal(t, m.CurrentUser() != nil, m.IsAuthenticated())
	assert.True(t, m.IsAuthenticated())
}

func TestBypassStrategySignsLocalToken(t *testing.T) {
	tokens := NewMemoryStore()
	s := &BypassStrategy{Tokens: tokens}

	user, err := s.Login(context.Background(), api.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, BypassUser.Username, user.Username)
	assert.Equal(t, "admin", user.Role)

	raw, has := tokens.Token()
	require.True(t, has)
	parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return bypassSecret, nil })
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, BypassUser.Username, sub)
}
