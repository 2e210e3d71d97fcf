package auth

import (
	"context"

	"github.com/Henok-Aragaw/echo/internal/model"
)

const (
	// LocalDevToken is the hardcoded bearer token for local development only.
	LocalDevToken = "echo_local_dev_token"
)

// StaticVerifier provides a simple verifier for local development and tests.
// It only recognizes the hardcoded LocalDevToken and resolves it to a fixed
// local user.
type StaticVerifier struct{}

// NewStaticVerifier creates a new StaticVerifier for local development.
func NewStaticVerifier() *StaticVerifier { return &StaticVerifier{} }

// VerifySession accepts only the hardcoded local token.
func (s *StaticVerifier) VerifySession(ctx context.Context, token string) (*Session, error) {
	if token != LocalDevToken {
		return nil, ErrNoSession
	}
	name := "Local Dev"
	return &Session{
		SessionID: "local-dev-session",
		Token:     token,
		User: model.User{
			UserID:      "echo-dev",
			Email:       "dev@echo.local",
			DisplayName: &name,
		},
	}, nil
}

// DeleteUser is a no-op for the local user.
func (s *StaticVerifier) DeleteUser(ctx context.Context, token string) error {
	if token != LocalDevToken {
		return ErrNoSession
	}
	return nil
}
