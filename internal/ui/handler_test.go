package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/shared"
)

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func post(t *testing.T, sess *shared.Session, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/ui", NewHandler(nil).MountRoutes)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestToggleSidebarRedirectsBack(t *testing.T) {
	sess := newSession(t)

	rr := post(t, sess, "/ui/sidebar", url.Values{"return": {"/masters/menus"}}, "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/masters/menus", rr.Header().Get("Location"))
	assert.True(t, shared.NewPreferences(sess).SidebarCollapsed())

	rr = post(t, sess, "/ui/sidebar", url.Values{"return": {"//evil.example"}}, "")
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.False(t, shared.NewPreferences(sess).SidebarCollapsed())
}

func TestSetThemeJSON(t *testing.T) {
	sess := newSession(t)

	rr := post(t, sess, "/ui/theme", url.Values{"theme": {"dark"}}, "application/json")
	require.Equal(t, http.StatusOK, rr.Code)
	var body preferencesView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, shared.ThemeDark, body.Theme)
	assert.Equal(t, shared.DefaultPageTitle, body.PageTitle)

	rr = post(t, sess, "/ui/theme", url.Values{"theme": {"neon"}}, "application/json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, shared.ThemeDark, shared.NewPreferences(sess).Theme())
}

func TestSidebarExplicitValue(t *testing.T) {
	sess := newSession(t)
	post(t, sess, "/ui/sidebar", url.Values{"collapsed": {"true"}}, "")
	post(t, sess, "/ui/sidebar", url.Values{"collapsed": {"true"}}, "")
	assert.True(t, shared.NewPreferences(sess).SidebarCollapsed())
}
