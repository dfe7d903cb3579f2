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
	// AdminUsername is the reserved bootstrap account name.
	AdminUsername = "admin"

	adminDisplayName = "Administrator"
)

// BootstrapService guarantees on every start that exactly one privileged
// account exists and that its credential matches current configuration.
type BootstrapService struct {
	Store store.Store

	// AdminPassword is the configured privileged-account password.
	AdminPassword string
}

// Seed creates the admin user if absent, or unconditionally resets its
// password hash to the configured value if present. The overwrite is a
// deliberate idempotent upsert: the deployment-time credential is
// authoritative and any runtime admin password change is undone on the
// next restart.
func (s *BootstrapService) Seed(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return fmt.Errorf("service: hash admin password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByUsername(ctx, AdminUsername)
		switch {
		case errors.Is(err, store.ErrNotFound):
			err := tx.Users().CreateUser(ctx, domain.User{
				ID:           idx.New().String(),
				Username:     AdminUsername,
				DisplayName:  adminDisplayName,
				PasswordHash: hash,
				IsAdmin:      true,
				CreatedAt:    time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("service: seed admin user: %w", err)
			}
			l.Info("seeded new admin user")
			return nil

		case err != nil:
			return fmt.Errorf("service: look up admin user: %w", err)

		default:
			if err := tx.Users().UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
				return fmt.Errorf("service: reset admin password: %w", err)
			}
			l.Info("updated existing admin password")
			return nil
		}
	})
}
