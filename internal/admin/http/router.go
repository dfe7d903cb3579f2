package http

import (
	"log/slog"
	"net/http"

	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/pkg/httpx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// defaultAllow lists the pages reachable without a session. Everything
// else is denied and redirected to the sign-in form.
var defaultAllow = []string{"/", LoginPath, "/links", "/privacy", "/error"}

// defaultAllowPrefixes lists path prefixes reachable without a session.
var defaultAllowPrefixes = []string{"/static/"}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions *Sessions
	renderer *Renderer
	logger   *slog.Logger

	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(sessions *Sessions, renderer *Renderer, logger *slog.Logger) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}

	policy := NewPolicy(sessions, defaultAllow, defaultAllowPrefixes)

	// Logging runs first so denied requests are still logged.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		policy.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerLogin()
	r.registerUsers()

	r.Mux.Handle("GET /static/", StaticHandler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	pages := &PagesHandler{Renderer: r.renderer}
	r.Mux.HandleFunc("GET /", pages.HandleHome)
	r.Mux.HandleFunc("GET /links", pages.HandleLinks)
	r.Mux.HandleFunc("GET /privacy", pages.HandlePrivacy)
	r.Mux.HandleFunc("GET /error", pages.HandleError)
}

func (r *Router) registerLogin() {
	login := &LoginHandler{
		Auth:     r.AuthService,
		Sessions: r.sessions,
		Renderer: r.renderer,
	}
	r.Mux.HandleFunc("GET "+LoginPath, login.HandleGet)
	r.Mux.HandleFunc("POST "+LoginPath, login.HandlePost)

	logout := &LogoutHandler{Sessions: r.sessions, Renderer: r.renderer}
	r.Mux.HandleFunc("GET /logout", logout.HandleGet)
	r.Mux.HandleFunc("POST /logout", logout.HandlePost)
}

func (r *Router) registerUsers() {
	users := &UsersHandler{Users: r.UserService, Renderer: r.renderer}
	r.Mux.HandleFunc("GET /users", users.HandleIndex)

	// Creating and deleting accounts is restricted to administrators.
	r.Mux.Handle("GET /users/create",
		r.requireAdmin(http.HandlerFunc(users.HandleCreateGet)))
	r.Mux.Handle("POST /users/create",
		r.requireAdmin(http.HandlerFunc(users.HandleCreatePost)))
	r.Mux.Handle("GET /users/delete",
		r.requireAdmin(http.HandlerFunc(users.HandleDeleteGet)))
	r.Mux.Handle("POST /users/delete",
		r.requireAdmin(http.HandlerFunc(users.HandleDeletePost)))

	change := &ChangePasswordHandler{Users: r.UserService, Renderer: r.renderer}
	r.Mux.HandleFunc("GET /change-password", change.HandleGet)
	r.Mux.HandleFunc("POST /change-password", change.HandlePost)
}

// requireAdmin responds 403 unless the request principal is an
// administrator. The policy middleware has already ensured a principal is
// present for non-allowlisted paths.
func (r *Router) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		p, ok := PrincipalFrom(req.Context())
		if !ok || !p.IsAdmin() {
			r.renderer.RenderError(w, req, http.StatusForbidden,
				"You do not have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, req)
	})
}
