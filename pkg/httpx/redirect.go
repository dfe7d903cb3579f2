package httpx

import "strings"

// IsLocalURL reports whether target is a same-origin relative path that is
// safe to redirect to. Absolute URLs, scheme-relative URLs ("//evil.com")
// and backslash tricks are rejected so login return targets cannot be used
// as open redirects.
func IsLocalURL(target string) bool {
	if target == "" {
		return false
	}
	if !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	if strings.ContainsAny(target, "\r\n") {
		return false
	}
	return true
}

// LocalRedirect returns target when it passes IsLocalURL, otherwise the
// provided fallback.
func LocalRedirect(target, fallback string) string {
	if IsLocalURL(target) {
		return target
	}
	return fallback
}
