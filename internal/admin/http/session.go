package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/pkg/sessionx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "adminlite_session"

// LoginPath is where denied requests are redirected, carrying the
// originally requested path in the return parameter.
const (
	LoginPath   = "/login"
	ReturnParam = "return"
)

// Sessions issues, clears, and authenticates session cookies.
type Sessions struct {
	Ring *sessionx.KeyRing

	// TTL is the session lifetime; the cookie Expires attribute matches
	// the claims expiry.
	TTL time.Duration
}

// Issue signs a session for p and sets it as a persistent HttpOnly,
// Secure cookie.
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, p domain.Principal) error {
	now := time.Now().UTC()
	claims := sessionx.NewClaims(p.Username, p.DisplayName, string(p.Role),
		s.Ring.Issuer(), s.TTL, now)

	token, err := s.Ring.Issue(r.Context(), claims)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.TTL),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear instructs the client to drop the session cookie. Idempotent; safe
// with no active session.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate decodes the request's session cookie into a principal.
// Missing, corrupt, expired, or unknown-key cookies all come back as
// (zero, false): the request is simply anonymous, never best-effort
// authenticated.
func (s *Sessions) Authenticate(r *http.Request) (domain.Principal, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return domain.Principal{}, false
	}

	claims, err := s.Ring.Decode(r.Context(), cookie.Value)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("session rejected", "err", err)
		return domain.Principal{}, false
	}

	return domain.Principal{
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Role:        domain.ParseRole(claims.Role),
	}, true
}

// Policy is the fallback authorization rule: every route requires a valid
// session unless its path is allowlisted.
type Policy struct {
	Sessions *Sessions

	// Allow lists exact paths anonymous requests may reach.
	Allow map[string]struct{}

	// AllowPrefixes lists path prefixes (e.g. "/static/") anonymous
	// requests may reach.
	AllowPrefixes []string
}

// NewPolicy builds a Policy over the given allowlist.
func NewPolicy(sessions *Sessions, allow []string, allowPrefixes []string) *Policy {
	set := make(map[string]struct{}, len(allow))
	for _, p := range allow {
		set[p] = struct{}{}
	}
	return &Policy{Sessions: sessions, Allow: set, AllowPrefixes: allowPrefixes}
}

// Middleware applies the policy: a valid session attaches the principal
// and passes; otherwise allowlisted paths pass anonymously and everything
// else is redirected to the login page with the original path preserved
// as the return target.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := p.Sessions.Authenticate(r); ok {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
			return
		}

		if p.allowed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		target := LoginPath + "?" + ReturnParam + "=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

func (p *Policy) allowed(path string) bool {
	if _, ok := p.Allow[path]; ok {
		return true
	}
	for _, prefix := range p.AllowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
