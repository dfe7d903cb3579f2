package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/katsuhira/adminlite/internal/admin/domain"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageNames are the content templates; each is parsed together with the
// shared layout.
var pageNames = []string{
	"home", "login", "logout", "links", "privacy", "error",
	"users_index", "users_create", "users_delete", "change_password",
}

// Page is the data every template receives. Handler-specific values go
// in Data.
type Page struct {
	Title     string
	Principal *domain.Principal
	Version   string
	BuildTime string

	// Error is a single user-visible message rendered above the form.
	Error string

	// Message is a non-error notice (e.g. "Password updated.").
	Message string

	Data any
}

// Renderer renders the embedded HTML templates with the shared layout.
type Renderer struct {
	pages     map[string]*template.Template
	version   string
	buildTime string
}

func NewRenderer(version, buildTime string) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templatesFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("http: parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, version: version, buildTime: buildTime}, nil
}

// Render writes the page with the given status. The principal, if any, is
// taken from the request context so the layout can show who is signed in.
func (re *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	t, ok := re.pages[name]
	if !ok {
		slogx.FromContext(r.Context()).Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if page.Principal == nil {
		if p, ok := PrincipalFrom(r.Context()); ok {
			page.Principal = &p
		}
	}
	page.Version = re.version
	page.BuildTime = re.buildTime

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", page); err != nil {
		slogx.FromContext(r.Context()).Error("render failed", "template", name, "err", err)
	}
}

// RenderError shows the generic error page with the given status.
func (re *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	re.Render(w, r, status, "error", Page{
		Title: "Error",
		Data:  map[string]any{"Status": status, "Message": message},
	})
}
