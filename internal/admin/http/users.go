package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/pkg/idx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// validationMessage strips the sentinel prefix so the form shows only the
// human-readable part.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}

// UsersHandler lists accounts and, for administrators, creates and deletes
// them.
type UsersHandler struct {
	Users    *service.UserService
	Renderer *Renderer
}

func (h *UsersHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("list users failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, "users_index", Page{
		Title: "Users",
		Data:  map[string]any{"Users": users},
	})
}

func (h *UsersHandler) HandleCreateGet(w http.ResponseWriter, r *http.Request) {
	h.renderCreate(w, r, http.StatusOK, "", service.CreateUserInput{})
}

func (h *UsersHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	input := service.CreateUserInput{
		Username:    r.PostFormValue("username"),
		DisplayName: r.PostFormValue("display_name"),
		Password:    r.PostFormValue("password"),
		IsAdmin:     r.PostFormValue("is_admin") == "1",
	}

	_, err := h.Users.CreateUser(r.Context(), input)
	switch {
	case err == nil:
		http.Redirect(w, r, "/users", http.StatusSeeOther)
	case errors.Is(err, service.ErrUsernameTaken):
		h.renderCreate(w, r, http.StatusOK, "That username is already taken.", input)
	case errors.Is(err, service.ErrValidation):
		h.renderCreate(w, r, http.StatusOK, validationMessage(err), input)
	default:
		slogx.FromContext(r.Context()).Error("create user failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
	}
}

func (h *UsersHandler) renderCreate(w http.ResponseWriter, r *http.Request, status int, errMsg string, input service.CreateUserInput) {
	h.Renderer.Render(w, r, status, "users_create", Page{
		Title: "Create user",
		Error: errMsg,
		Data: map[string]any{
			"Username":    input.Username,
			"DisplayName": input.DisplayName,
			"IsAdmin":     input.IsAdmin,
		},
	})
}

func (h *UsersHandler) HandleDeleteGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if _, err := idx.Parse(id); err != nil {
		h.Renderer.RenderError(w, r, http.StatusNotFound, "No such user.")
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), id)
	switch {
	case err == nil:
		h.Renderer.Render(w, r, http.StatusOK, "users_delete", Page{
			Title: "Delete user",
			Data:  map[string]any{"User": user},
		})
	case errors.Is(err, store.ErrNotFound):
		h.Renderer.RenderError(w, r, http.StatusNotFound, "No such user.")
	default:
		slogx.FromContext(r.Context()).Error("load user failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
	}
}

func (h *UsersHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	id := r.PostFormValue("id")
	if _, err := idx.Parse(id); err != nil {
		h.Renderer.RenderError(w, r, http.StatusNotFound, "No such user.")
		return
	}

	err := h.Users.DeleteUser(r.Context(), id)
	switch {
	case err == nil, errors.Is(err, store.ErrNotFound):
		// Already gone is fine; the list is the source of truth.
		http.Redirect(w, r, "/users", http.StatusSeeOther)
	default:
		slogx.FromContext(r.Context()).Error("delete user failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
	}
}
