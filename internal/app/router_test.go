package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/finoracle/backoffice/testing"

	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/observability"
	"github.com/finoracle/backoffice/internal/shared"
	"github.com/finoracle/backoffice/internal/ui"
	"github.com/finoracle/backoffice/internal/view"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	remote := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(remote.Close)

	cfg := &Config{
		AppEnv:          "test",
		APIBaseURL:      remote.URL + "/api",
		APITimeout:      time.Second,
		RefdataCacheTTL: time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates, err := view.NewEngine()
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	csrf := shared.NewCSRFManager("csrf-secret")

	gw := NewGateway(cfg, logger, metrics)
	modules := NewModules(gw, masters.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrf,
		Refdata:   NewRefdataLoader(cfg, rdb, gw, logger, metrics),
		Guard:     shared.NewSubmitGuard(rdb, time.Minute),
		Stale:     metrics,
	})

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: shared.NewSessionManager(rdb, "backoffice_session", "session-secret", time.Hour, false),
		CSRFManager:    csrf,
		Modules:        modules,
		UIHandler:      ui.NewHandler(logger),
		Metrics:        metrics,
	})
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthz(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouterHomeListsScreens(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, path := range []string{"/masters/menus", "/masters/roles", "/masters/menu-roles", "/masters/users"} {
		assert.Contains(t, body, `href="`+path+`"`)
	}
	assert.Contains(t, body, "Environment: test")
	assert.NotEmpty(t, rec.Result().Cookies(), "session cookie issued")
}

func TestRouterServesFixtureWhenRemoteIsDown(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "/masters/users/data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"fixture"`)
}

func TestRouterStaticAssets(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "/static/css/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
}

func TestRouterRejectsPostWithoutCSRF(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodPost, "/masters/roles")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterMetrics(t *testing.T) {
	router := newTestRouter(t)
	serve(t, router, http.MethodGet, "/healthz")
	rec := serve(t, router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_http_requests_total")
}
