package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/katsuhira/adminlite/pkg/idx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

const (
	maxUsernameLength    = 64
	maxDisplayNameLength = 128

	// MinPasswordLength applies to passwords chosen through the UI; the
	// bootstrap password is configuration and is not re-validated here.
	MinPasswordLength = 8
)

var (
	// ErrUsernameTaken reports a duplicate username on create.
	ErrUsernameTaken = errors.New("service: username already taken")

	// ErrValidation reports a rejected field value; the message is safe
	// to show on the form.
	ErrValidation = errors.New("service: validation failed")
)

// UserService implements the user management pages: listing, creation,
// deletion, and password changes.
type UserService struct {
	Store store.Store
}

// ListUsers returns all users ordered by username.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// GetUserByID fetches a single user, for the delete confirmation page.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// CreateUserInput carries the user-creation form fields.
type CreateUserInput struct {
	Username    string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// CreateUser validates the input, hashes the password, and inserts the
// record.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	if err := validateCreateUser(in); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service: hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("service: create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user created", "username", u.Username, "is_admin", u.IsAdmin)
	return u, nil
}

// DeleteUser removes the record by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

// ChangePassword rehashes and stores a new password for the named user.
// Used by the change-password page for the logged-in account.
func (s *UserService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrValidation, MinPasswordLength)
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("service: hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("password updated", "username", username)
	return nil
}

func validateCreateUser(in CreateUserInput) error {
	if in.Username == "" || in.DisplayName == "" || in.Password == "" {
		return fmt.Errorf("%w: username, display name, and password are required", ErrValidation)
	}
	if len(in.Username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters",
			ErrValidation, maxUsernameLength)
	}
	if len(in.DisplayName) > maxDisplayNameLength {
		return fmt.Errorf("%w: display name must be at most %d characters",
			ErrValidation, maxDisplayNameLength)
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrValidation, MinPasswordLength)
	}
	return nil
}
