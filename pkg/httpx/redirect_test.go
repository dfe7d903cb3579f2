package httpx_test

import (
	"testing"

	"github.com/katsuhira/adminlite/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestIsLocalURL(t *testing.T) {
	t.Parallel()

	local := []string{"/", "/users", "/users/create?x=1", "/login?return=/users"}
	for _, u := range local {
		require.True(t, httpx.IsLocalURL(u), "url %q", u)
	}

	foreign := []string{
		"",
		"users",
		"http://evil.example/",
		"https://evil.example/users",
		"//evil.example/users",
		"/\\evil.example",
		"/users\r\nSet-Cookie: x=y",
	}
	for _, u := range foreign {
		require.False(t, httpx.IsLocalURL(u), "url %q", u)
	}
}

func TestLocalRedirect(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/users", httpx.LocalRedirect("/users", "/"))
	require.Equal(t, "/", httpx.LocalRedirect("https://evil.example", "/"))
	require.Equal(t, "/", httpx.LocalRedirect("", "/"))
}
