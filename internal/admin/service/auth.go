package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// ErrInvalidCredentials is returned for both an unknown username and a
// wrong password. Callers must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("service: invalid credentials")

// AuthService verifies credentials and builds the session principal.
// It never mutates user records.
type AuthService struct {
	Store store.Store
}

// Login looks up the user by exact username and verifies the password.
// On success it returns the principal to issue a session for. An unknown
// user and a failed verification produce the identical error; a storage
// failure is surfaced as-is so it is not mistaken for bad credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("login rejected", "username", username)
		return domain.Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("service: look up user: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		l.Info("login rejected", "username", username)
		return domain.Principal{}, ErrInvalidCredentials
	}

	display := user.DisplayName
	if display == "" {
		display = user.Username
	}

	l.Info("login accepted", "username", username, "role", string(user.Role()))
	return domain.Principal{
		Username:    user.Username,
		DisplayName: display,
		Role:        user.Role(),
	}, nil
}
