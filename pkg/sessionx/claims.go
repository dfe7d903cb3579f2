// Package sessionx implements the session cookie codec: a signed JWT
// carrying the authenticated principal, issued under the current entry of
// a durable key ring and verifiable under any retained entry. The kid
// header selects the key-ring entry so rotation does not invalidate
// outstanding cookies.
package sessionx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default session cookie lifetime.
const DefaultSessionTTL = 8 * time.Hour

// Claims are the session cookie contents. The cookie is the only place
// session state lives; nothing is held server-side.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user.
	Username string `json:"username"`

	// DisplayName shown in page headers; falls back to the username.
	DisplayName string `json:"display_name,omitempty"`

	// Role is "user" or "admin".
	Role string `json:"role"`
}

// NewClaims builds session claims for a freshly authenticated user.
func NewClaims(username, displayName, role, issuer string, ttl time.Duration, now time.Time) Claims {
	if displayName == "" {
		displayName = username
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username:    username,
		DisplayName: displayName,
		Role:        role,
	}
}
