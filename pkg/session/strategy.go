package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

// Strategy performs the credential exchange for a login attempt. The
// production strategy talks to the token endpoint; the bypass strategy
// synthesizes an identity for development. The strategy is chosen once
// at bootstrap, never branched on inside the session.
type Strategy interface {
	Login(ctx context.Context, creds api.Credentials) (*api.User, error)
}

// PasswordStrategy is the production flow: exchange credentials for a
// token, persist it, then fetch the profile the token belongs to.
type PasswordStrategy struct {
	Auth   api.Authenticator
	Tokens api.TokenStore
}

var _ Strategy = (*PasswordStrategy)(nil)

func (s *PasswordStrategy) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	tok, err := s.Auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned an empty access_token")
	}
	if err := s.Tokens.Save(tok.AccessToken); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	user, err := s.Auth.GetProfile(ctx)
	if err != nil {
		// A token without a profile is useless; roll it back.
		_ = s.Tokens.Clear()
		return nil, err
	}
	return user, nil
}

// bypassSecret signs the synthetic development token. It never reaches
// a real server.
var bypassSecret = []byte("healthpulse-dev-bypass")

// BypassUser is the fixed identity the bypass strategy logs in as.
var BypassUser = api.User{
	ID:         "dev-user",
	Username:   "dev",
	Name:       "Development User",
	Email:      "dev@healthpulse.local",
	Role:       "admin",
	Department: "ICU",
}

// BypassStrategy short-circuits login with a fixed identity and a
// locally signed placeholder token. Development only.
type BypassStrategy struct {
	Tokens api.TokenStore
}

var _ Strategy = (*BypassStrategy)(nil)

func (s *BypassStrategy) Login(_ context.Context, _ api.Credentials) (*api.User, error) {
	claims := jwt.MapClaims{
		"sub":  BypassUser.Username,
		"role": BypassUser.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(bypassSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.Save(token); err != nil {
		return nil, err
	}
	user := BypassUser
	return &user, nil
}
