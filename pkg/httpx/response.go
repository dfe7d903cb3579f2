package httpx

import "net/http"

// NoCache sets Cache-Control and Pragma headers to prevent caching.
// Pages carrying session state or forms should not be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
