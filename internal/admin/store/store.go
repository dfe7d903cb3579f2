package store

import (
	"context"
	"errors"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Sub-repositories are exposed as methods to keep
// concerns tidy and testable.
type Store interface {
	Users() Users
	CookieKeys() CookieKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back on error and
	// committing on nil. This is the recommended way to run multi-step
	// operations that must be atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback on top.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername matches the username exactly (case-sensitive);
	// used during login and bootstrap.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A duplicate username maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the stored hash for a user.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateDisplayName replaces the display name for a user.
	UpdateDisplayName(ctx context.Context, userID string, displayName string) error

	// DeleteUser removes the record.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type CookieKeys interface {
	// CreateCookieKey stores a new key-ring entry with sealed key material.
	CreateCookieKey(ctx context.Context, key domain.CookieKey) error

	// GetCookieKeyByKid fetches an entry by key identifier regardless of
	// whether its activation window is still open.
	GetCookieKeyByKid(ctx context.Context, kid string) (domain.CookieKey, error)

	// ListCookieKeys returns every entry, retired ones included, newest
	// first, so outstanding cookies keep verifying after rotation.
	ListCookieKeys(ctx context.Context) ([]domain.CookieKey, error)

	// RetireCookieKey closes an entry's activation window. Retired keys
	// still verify; they are no longer used for issuance.
	RetireCookieKey(ctx context.Context, kid string, at time.Time) error
}
