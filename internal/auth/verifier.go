package auth

import (
	"context"
	"errors"

	"github.com/Henok-Aragaw/echo/internal/model"
)

// ErrNoSession is returned when the bearer token does not resolve to a live
// session. Every endpoint behind the session gate maps it to a uniform
// authorization failure.
var ErrNoSession = errors.New("no valid session")

// Session is the authenticated caller as reported by the auth service.
type Session struct {
	SessionID string     `json:"sessionId"`
	Token     string     `json:"-"`
	User      model.User `json:"user"`
}

// Verifier validates bearer credentials against the external auth service.
// Account deletion is also owned by that service; the local store only
// cascades afterwards.
type Verifier interface {
	VerifySession(ctx context.Context, token string) (*Session, error)
	DeleteUser(ctx context.Context, token string) error
}
