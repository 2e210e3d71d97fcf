package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Henok-Aragaw/echo/internal/auth"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store"
)

// UserService handles the profile and account-deletion paths. Accounts are
// owned by the auth service; the local store only mirrors them and cascades
// on deletion.
type UserService struct {
	store    store.Store
	verifier auth.Verifier
	log      zerolog.Logger
}

func NewUserService(s store.Store, v auth.Verifier, log zerolog.Logger) *UserService {
	return &UserService{store: s, verifier: v, log: log}
}

// Profile returns the caller's user record, preferring the local mirror when
// one exists.
func (s *UserService) Profile(ctx context.Context, sess *auth.Session) (*model.User, error) {
	u, err := s.store.Users().Get(ctx, sess.User.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			out := sess.User
			return &out, nil
		}
		return nil, err
	}
	return u, nil
}

// Delete removes the account at the auth service first, then cascades the
// local fragments, insights and memories.
func (s *UserService) Delete(ctx context.Context, sess *auth.Session) error {
	if err := s.verifier.DeleteUser(ctx, sess.Token); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, sess.User.UserID); err != nil {
		// The auth account is already gone; the local rows must not linger.
		s.log.Error().Stack().Err(err).Str("user_id", sess.User.UserID).Msg("local cascade delete failed")
		return err
	}
	return nil
}
