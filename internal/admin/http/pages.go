package http

import "net/http"

// Link is an entry on the public links page.
type Link struct {
	Title string
	URL   string
	Note  string
}

// defaultLinks is the static content of the links page.
var defaultLinks = []Link{
	{Title: "Go", URL: "https://go.dev", Note: "language home"},
	{Title: "SQLite", URL: "https://sqlite.org", Note: "storage engine"},
	{Title: "Source", URL: "https://github.com/katsuhira/adminlite"},
}

// PagesHandler serves the static informational pages.
type PagesHandler struct {
	Renderer *Renderer
}

func (h *PagesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes every unmatched path to "/"; anything else is a 404.
	if r.URL.Path != "/" {
		h.Renderer.RenderError(w, r, http.StatusNotFound, "The page you requested does not exist.")
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, "home", Page{Title: "Home"})
}

func (h *PagesHandler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "links", Page{
		Title: "Links",
		Data:  map[string]any{"Links": defaultLinks},
	})
}

func (h *PagesHandler) HandlePrivacy(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "privacy", Page{Title: "Privacy"})
}

func (h *PagesHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	h.Renderer.RenderError(w, r, http.StatusInternalServerError,
		"An error occurred while processing your request.")
}
