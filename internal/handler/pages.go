// Package handler contains the HTTP handlers of the photo-sharing app.
//
// Handlers parse requests, call a service, and write either JSON (the
// /api/* routes and form posts) or an HTML page. They hold no business
// rules; ownership checks and validation live in internal/service.
package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/photo-share/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames are the templates under templates/ that render a full page.
// Each is parsed together with base.html, which defines the layout and
// calls {{template "content" .}}.
var pageNames = []string{"login.html", "signup.html", "feed.html", "upload.html"}

// Pages renders the HTML pages. Templates are parsed once at startup.
type Pages struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewPages parses every page template. A parse error is a programming
// error, reported at startup rather than on the first request.
func NewPages(logger *slog.Logger) (*Pages, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Pages{templates: templates, logger: logger}, nil
}

// render executes the named page with data.
func (p *Pages) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := p.templates[name]
	if !ok {
		p.logger.Error("unknown template", slog.String("template", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		p.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// pageData is what every page template receives.
type pageData struct {
	Title    string
	Username string
	UserID   int64
	Posts    []model.EnrichedPost
}
