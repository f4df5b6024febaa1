package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
)

//go:embed templates/index.html
var templateFS embed.FS

// IndexHandler serves the single-page websocket client.
type IndexHandler struct {
	tmpl   *template.Template
	logger *log.Logger
}

// NewIndexHandler parses the embedded page template.
func NewIndexHandler(logger *log.Logger) (*IndexHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &IndexHandler{tmpl: tmpl, logger: logger}, nil
}

func (h *IndexHandler) Routes() []string {
	return []string{"/"}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	_, authorized := authorizedRequest(r)
	data := struct{ Authorized bool }{Authorized: authorized}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render index", "error", err)
	}
}

func authorizedRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(accessCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
