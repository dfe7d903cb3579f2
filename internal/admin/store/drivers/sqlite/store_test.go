package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/internal/admin/store/drivers/sqlite"
	"github.com/katsuhira/adminlite/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func testUser(username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  "Display " + username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2Fs$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestUsersCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "Display alice", got.DisplayName)
	require.False(t, got.IsAdmin)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, byID.Username)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash"))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)

	require.NoError(t, s.Users().UpdateDisplayName(ctx, u.ID, "Alice A."))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice A.", got.DisplayName)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsernameCaseSensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("Alice")))

	_, err := s.Users().GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsernameUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("alice")))
	err := s.Users().CreateUser(ctx, testUser("alice"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestListUsersOrderedByUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"charlie", "alice", "bob"} {
		require.NoError(t, s.Users().CreateUser(ctx, testUser(name)))
	}

	users, err := s.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "bob", users[1].Username)
	require.Equal(t, "charlie", users[2].Username)
}

func TestNotFoundMappings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Users().GetUserByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().DeleteUser(ctx, "no-such-id"), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "no-such-id", "h"), store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	sentinel := store.ErrAlreadyExists
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, testUser("alice")); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Users().GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCookieKeysPersistAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "keys.db")
	s, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	key := domain.CookieKey{
		ID:               idx.New().String(),
		Kid:              "test-kid-1",
		PrivateKeySealed: []byte{0x01, 0x02, 0x03},
		Label:            "initial",
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.CookieKeys().CreateCookieKey(ctx, key))
	require.NoError(t, s.Close())

	// Reopen: the entry must still be retrievable by kid, or every
	// outstanding session dies on redeploy.
	reopened, err := sqlite.NewStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, reopened.ApplyMigrations())

	got, err := reopened.CookieKeys().GetCookieKeyByKid(ctx, "test-kid-1")
	require.NoError(t, err)
	require.Equal(t, key.PrivateKeySealed, got.PrivateKeySealed)
	require.True(t, got.Active())
}

func TestRetireCookieKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	key := domain.CookieKey{
		ID:               idx.New().String(),
		Kid:              "retiring-kid",
		PrivateKeySealed: []byte{0xAA},
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.CookieKeys().CreateCookieKey(ctx, key))

	require.NoError(t, s.CookieKeys().RetireCookieKey(ctx, "retiring-kid", time.Now().UTC()))

	// Retired entries remain addressable by kid.
	got, err := s.CookieKeys().GetCookieKeyByKid(ctx, "retiring-kid")
	require.NoError(t, err)
	require.False(t, got.Active())
	require.NotNil(t, got.RetiredAt)

	// Retiring twice affects nothing further.
	require.ErrorIs(t, s.CookieKeys().RetireCookieKey(ctx, "retiring-kid", time.Now().UTC()),
		store.ErrNotFound)
}

func TestListCookieKeysNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, kid := range []string{"old", "mid", "new"} {
		require.NoError(t, s.CookieKeys().CreateCookieKey(ctx, domain.CookieKey{
			ID:               idx.NewAt(base.Add(time.Duration(i) * time.Minute)).String(),
			Kid:              kid,
			PrivateKeySealed: []byte{byte(i)},
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}

	keys, err := s.CookieKeys().ListCookieKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.Equal(t, "new", keys[0].Kid)
	require.Equal(t, "old", keys[2].Kid)
}

func TestKidUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	key := domain.CookieKey{
		ID:               idx.New().String(),
		Kid:              "dup-kid",
		PrivateKeySealed: []byte{0x01},
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.CookieKeys().CreateCookieKey(ctx, key))

	key.ID = idx.New().String()
	require.ErrorIs(t, s.CookieKeys().CreateCookieKey(ctx, key), store.ErrAlreadyExists)
}
