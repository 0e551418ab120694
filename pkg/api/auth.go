package api

import (
	"context"
)

// Credentials is a username/password pair for the token endpoint.
type Credentials struct {
	Username string
	Password string
}

// PasswordReset carries a reset token and the replacement password.
type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChange is the authenticated change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ProfileUpdate is a partial profile patch.
type ProfileUpdate struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

// AuthService groups the authentication operations.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for a bearer token. The token endpoint
// consumes form-urlencoded per the OAuth2 password flow.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	env, err := postForm[TokenResponse](ctx, s.c, "/api/v1/auth/token", map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Logout invalidates the current session server-side. A 401 here is not
// an error: the token was already dead.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := post[struct{}](ctx, s.c, "/api/v1/auth/logout", nil)
	if err != nil && !IsUnauthorized(err) {
		return err
	}
	return nil
}

// GetProfile fetches the identity for the current token.
func (s *AuthService) GetProfile(ctx context.Context) (*User, error) {
	env, err := get[User](ctx, s.c, "/api/v1/users/me", nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateProfile applies a partial update to the current user.
func (s *AuthService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	env, err := patch[User](ctx, s.c, "/api/v1/users/me", update)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ForgotPassword asks the server to mail a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := post[struct{}](ctx, s.c, "/api/v1/auth/forgot-password", map[string]string{"email": email})
	return err
}

// ResetPassword redeems a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, reset PasswordReset) error {
	_, err := post[struct{}](ctx, s.c, "/api/v1/auth/reset-password", reset)
	return err
}

// ChangePassword changes the password of the current user.
func (s *AuthService) ChangePassword(ctx context.Context, change PasswordChange) error {
	_, err := post[struct{}](ctx, s.c, "/api/v1/auth/change-password", change)
	return err
}
