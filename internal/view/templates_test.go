package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	require.NotNil(t, engine)
	assert.NotEmpty(t, engine.Nav().Sections)
}

func TestPageDefaultsWithoutSession(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	data := engine.Page(httptest.NewRequest(http.MethodGet, "/masters/roles", nil))
	assert.Equal(t, shared.DefaultPageTitle, data.Title)
	assert.Equal(t, "/masters/roles", data.CurrentPath)
	assert.Equal(t, shared.ThemeLight, data.Theme)
	assert.False(t, data.Collapsed)
}

func TestRenderStatusWritesHeadersFirst(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	data := engine.Page(httptest.NewRequest(http.MethodGet, "/", nil))
	data.Flash = &shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Saved"}
	data.Data = map[string]any{"AppEnv": "test", "Screens": []any{}}
	require.NoError(t, engine.RenderStatus(rec, "pages/home.html", data, http.StatusAccepted))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Saved")
	assert.Contains(t, rec.Body.String(), `href="/masters/menus"`)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.RenderStatus(rec, "pages/missing.html", TemplateData{}, http.StatusOK)
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}
