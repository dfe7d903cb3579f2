package http

import "net/http"

// LogoutHandler ends the session by clearing the cookie. The signed token
// itself stays valid until it expires; clearing removes it from the browser.
type LogoutHandler struct {
	Sessions *Sessions
	Renderer *Renderer
}

func (h *LogoutHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "logout", Page{Title: "Sign out"})
}

func (h *LogoutHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
