package http

import (
	"errors"
	"net/http"

	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// ChangePasswordHandler lets the signed-in user set a new password for
// their own account.
type ChangePasswordHandler struct {
	Users    *service.UserService
	Renderer *Renderer
}

func (h *ChangePasswordHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "change_password", Page{Title: "Change password"})
}

func (h *ChangePasswordHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		// The policy middleware normally prevents this.
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Renderer.RenderError(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	newPassword := r.PostFormValue("new_password")
	confirm := r.PostFormValue("confirm_password")
	if newPassword != confirm {
		h.Renderer.Render(w, r, http.StatusOK, "change_password", Page{
			Title: "Change password",
			Error: "The passwords do not match.",
		})
		return
	}

	err := h.Users.ChangePassword(r.Context(), principal.Username, newPassword)
	switch {
	case err == nil:
		h.Renderer.Render(w, r, http.StatusOK, "change_password", Page{
			Title:   "Change password",
			Message: "Password updated.",
		})
	case errors.Is(err, service.ErrValidation):
		h.Renderer.Render(w, r, http.StatusOK, "change_password", Page{
			Title: "Change password",
			Error: validationMessage(err),
		})
	default:
		slogx.FromContext(r.Context()).Error("change password failed", "err", err)
		h.Renderer.RenderError(w, r, http.StatusInternalServerError,
			"An error occurred while processing your request.")
	}
}
