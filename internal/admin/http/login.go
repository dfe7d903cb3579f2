package http

import (
	"errors"
	"net/http"

	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/pkg/httpx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// loginLanding is where a successful sign-in goes when no usable return
// target was supplied.
const loginLanding = "/users"

// LoginHandler renders the sign-in form and establishes sessions.
type LoginHandler struct {
	Auth     *service.AuthService
	Sessions *Sessions
	Renderer *Renderer
}

func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := PrincipalFrom(r.Context()); ok {
		http.Redirect(w, r, loginLanding, http.StatusSeeOther)
		return
	}

	ret := r.URL.Query().Get(ReturnParam)
	if !httpx.IsLocalURL(ret) {
		ret = ""
	}

	httpx.NoCache(w)
	h.Renderer.Render(w, r, http.StatusOK, "login", Page{
		Title: "Sign in",
		Data:  map[string]any{"Return": ret, "Username": ""},
	})
}

func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	ret := r.PostFormValue(ReturnParam)
	if !httpx.IsLocalURL(ret) {
		ret = ""
	}

	principal, err := h.Auth.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(r.Context()).Error("login failed", "err", err)
			h.Renderer.RenderError(w, r, http.StatusInternalServerError,
				"An error occurred while processing your request.")
			return
		}
		// The same message regardless of which part of the check failed.
		httpx.NoCache(w)
		h.Renderer.Render(w, r, http.StatusOK, "login", Page{
			Title: "Sign in",
			Error: "Invalid username or password.",
			Data:  map[string]any{"Return": ret, "Username": username},
		})
		return
	}

	if err := h.Sessions.Issue(w, r, principal); err != nil {
		slogx.FromContext(r.Context()).Error("session issue failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
		return
	}

	http.Redirect(w, r, httpx.LocalRedirect(ret, loginLanding), http.StatusSeeOther)
}
