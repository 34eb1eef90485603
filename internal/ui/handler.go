// Package ui serves the sidebar and theme preference endpoints.
package ui

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finoracle/backoffice/internal/platform/httpx"
	"github.com/finoracle/backoffice/internal/shared"
)

// Handler updates the session preferences.
type Handler struct {
	logger *slog.Logger
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// MountRoutes registers preference routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/preferences", h.show)
	r.Post("/sidebar", h.toggleSidebar)
	r.Post("/theme", h.setTheme)
}

type preferencesView struct {
	PageTitle        string `json:"pageTitle"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
	Theme            string `json:"theme"`
}

func viewOf(p shared.Preferences) preferencesView {
	return preferencesView{PageTitle: p.PageTitle(), SidebarCollapsed: p.SidebarCollapsed(), Theme: p.Theme()}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, viewOf(shared.PreferencesFromContext(r.Context())))
}

func (h *Handler) toggleSidebar(w http.ResponseWriter, r *http.Request) {
	prefs := shared.PreferencesFromContext(r.Context())
	if raw := r.PostFormValue("collapsed"); raw != "" {
		prefs.SetSidebarCollapsed(raw == "1" || raw == "true")
	} else {
		prefs.ToggleSidebar()
	}
	h.respond(w, r, prefs)
}

func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.PostFormValue("theme")
	if theme != shared.ThemeLight && theme != shared.ThemeDark {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Theme", "theme must be light or dark")
		return
	}
	prefs := shared.PreferencesFromContext(r.Context())
	prefs.SetTheme(theme)
	h.logger.Debug("theme changed", slog.String("theme", theme))
	h.respond(w, r, prefs)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, prefs shared.Preferences) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		httpx.JSON(w, http.StatusOK, viewOf(prefs))
		return
	}
	http.Redirect(w, r, safeReturn(r.PostFormValue("return")), http.StatusSeeOther)
}

// safeReturn only allows local paths as redirect targets.
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.ContainsAny(target, "\\\r\n") {
		return "/"
	}
	return target
}
