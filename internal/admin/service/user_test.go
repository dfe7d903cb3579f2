package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := &service.UserService{Store: newTestStore(t)}

	cases := []struct {
		name string
		in   service.CreateUserInput
	}{
		{"empty username", service.CreateUserInput{DisplayName: "X", Password: "longenough"}},
		{"empty display name", service.CreateUserInput{Username: "x", Password: "longenough"}},
		{"empty password", service.CreateUserInput{Username: "x", DisplayName: "X"}},
		{"short password", service.CreateUserInput{Username: "x", DisplayName: "X", Password: "short"}},
		{"username too long", service.CreateUserInput{
			Username: strings.Repeat("a", 65), DisplayName: "X", Password: "longenough"}},
		{"display name too long", service.CreateUserInput{
			Username: "x", DisplayName: strings.Repeat("a", 129), Password: "longenough"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.CreateUser(ctx, tc.in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := &service.UserService{Store: newTestStore(t)}

	in := service.CreateUserInput{Username: "alice", DisplayName: "Alice", Password: "longenough"}
	_, err := users.CreateUser(ctx, in)
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, in)
	require.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestCreateUserHashesPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	users := &service.UserService{Store: st}

	created, err := users.CreateUser(ctx, service.CreateUserInput{
		Username: "alice", DisplayName: "Alice", Password: "alice-password",
	})
	require.NoError(t, err)
	require.NotContains(t, created.PasswordHash, "alice-password")
	require.True(t, cryptox.VerifyPassword("alice-password", created.PasswordHash))
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	users := &service.UserService{Store: st}

	created, err := users.CreateUser(ctx, service.CreateUserInput{
		Username: "alice", DisplayName: "Alice", Password: "longenough",
	})
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, created.ID))
	_, err = users.GetUserByID(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, users.DeleteUser(ctx, created.ID), store.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	users := &service.UserService{Store: st}

	_, err := users.CreateUser(ctx, service.CreateUserInput{
		Username: "alice", DisplayName: "Alice", Password: "old-password",
	})
	require.NoError(t, err)

	require.ErrorIs(t, users.ChangePassword(ctx, "alice", "short"), service.ErrValidation)
	require.ErrorIs(t, users.ChangePassword(ctx, "ghost", "longenough"), store.ErrNotFound)

	require.NoError(t, users.ChangePassword(ctx, "alice", "new-password"))
	got, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, cryptox.VerifyPassword("new-password", got.PasswordHash))
	require.False(t, cryptox.VerifyPassword("old-password", got.PasswordHash))
}
