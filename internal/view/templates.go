package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/finoracle/backoffice/internal/nav"
	"github.com/finoracle/backoffice/internal/shared"
	"github.com/finoracle/backoffice/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	nav       nav.Tree
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nav         nav.Tree
	Collapsed   bool
	Theme       string
	Data        any
}

// NewEngine parses templates at build-time and loads the sidebar navigation.
func NewEngine() (*Engine, error) {
	tree, err := nav.Load()
	if err != nil {
		return nil, err
	}
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			out := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				out[key] = pairs[i+1]
			}
			return out, nil
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, nav: tree}, nil
}

// Nav returns the sidebar tree.
func (e *Engine) Nav() nav.Tree {
	return e.nav
}

// Page prepares TemplateData for r with the session preferences applied.
func (e *Engine) Page(r *http.Request) TemplateData {
	prefs := shared.PreferencesFromContext(r.Context())
	return TemplateData{
		Title:       prefs.PageTitle(),
		CurrentPath: r.URL.Path,
		Nav:         e.nav,
		Collapsed:   prefs.SidebarCollapsed(),
		Theme:       prefs.Theme(),
	}
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, name, data, http.StatusOK)
}

// RenderStatus renders into a buffer first so a template failure leaves the
// response untouched for the caller's error path.
func (e *Engine) RenderStatus(w http.ResponseWriter, name string, data TemplateData, status int) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Execute renders into any writer, e.g. a buffer handed to the PDF renderer.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	if len(data.Nav.Sections) == 0 {
		data.Nav = e.nav
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
