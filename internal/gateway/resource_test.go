package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/platform/httpx"
)

type menuRow struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

type recorderStub struct {
	mu        sync.Mutex
	outcomes  []string
	fallbacks map[string]int
}

func (r *recorderStub) ObserveGatewayRequest(entity, op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, entity+":"+op+":"+outcome)
}

func (r *recorderStub) IncGatewayFallback(entity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallbacks == nil {
		r.fallbacks = map[string]int{}
	}
	r.fallbacks[entity]++
}

func TestPageSendsPagedSearchQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":7,"label":"Reports","link":"/reports"}],"rowCount":41}`))
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL+"/api/", time.Second)
	menus := gateway.NewResource[menuRow](client, "Menu")

	result, source, err := menus.Page(context.Background(), gateway.PageQuery{Sort: "label", Desc: true, Param: "rep", Skip: 20, Take: 10})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, gateway.SourceRemote, source)
	assert.Equal(t, "/api/Menu/pagingwithsearch", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "label", q.Get("sort"))
	assert.Equal(t, "true", q.Get("desc"))
	assert.Equal(t, "rep", q.Get("param"))
	assert.Equal(t, "20", q.Get("skip"))
	assert.Equal(t, "10", q.Get("take"))
	assert.Equal(t, 41, result.RowCount)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Reports", result.Results[0].Label)
}

func TestPageFallsBackToFixtureOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &recorderStub{}
	client := gateway.NewClient(srv.URL, time.Second, gateway.WithRecorder(rec))
	menus := gateway.NewResource[menuRow](client, "Menu")

	fixture, err := menus.Fixture()
	require.NoError(t, err)

	result, source, err := menus.Page(context.Background(), gateway.PageQuery{Sort: "id", Take: 10})
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFixture, source)
	assert.Equal(t, fixture.RowCount, result.RowCount)
	assert.Equal(t, fixture.Results, result.Results)
	assert.Equal(t, 1, rec.fallbacks["Menu"])
	assert.Contains(t, rec.outcomes, "Menu:page:error")
}

func TestPageFallsBackWhenServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := gateway.NewClient(addr, 200*time.Millisecond)
	roles := gateway.NewResource[map[string]any](client, "UserRole")

	result, source, err := roles.Page(context.Background(), gateway.PageQuery{Take: 10})
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFixture, source)
	assert.Equal(t, 4, result.RowCount)
	assert.Len(t, result.Results, 4)
}

func TestPageWithoutFixtureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, time.Second)
	unknown := gateway.NewResource[menuRow](client, "Unknown")

	_, source, err := unknown.Page(context.Background(), gateway.PageQuery{Take: 10})
	require.Error(t, err)
	assert.Equal(t, gateway.SourceFixture, source)
	assert.ErrorIs(t, err, gateway.ErrNoFixture)
	assert.ErrorIs(t, err, gateway.ErrTransport)
}

func TestFixtureOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Menu.json"), []byte(`{"results":[],"rowCount":100}`), 0o600))

	client := gateway.NewClient("http://127.0.0.1:0", time.Second, gateway.WithFixtures(gateway.NewFixtures(dir)))
	menus := gateway.NewResource[menuRow](client, "Menu")
	fixture, err := menus.Fixture()
	require.NoError(t, err)
	assert.Equal(t, 100, fixture.RowCount)
	assert.Empty(t, fixture.Results)

	// Entities missing from the override still resolve to the bundled copy.
	users := gateway.NewResource[map[string]any](client, "User")
	bundled, err := users.Fixture()
	require.NoError(t, err)
	assert.NotEmpty(t, bundled.Results)
}

func TestAllAcceptsArrayAndEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Menu", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"label":"Dashboard"},{"id":2,"label":"Masters"}]`))
	})
	mux.HandleFunc("/UserRole", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1,"label":"Admin"}],"rowCount":1}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := gateway.NewClient(srv.URL, time.Second)

	menus, err := gateway.NewResource[menuRow](client, "Menu").All(context.Background())
	require.NoError(t, err)
	assert.Len(t, menus, 2)

	roles, err := gateway.NewResource[menuRow](client, "UserRole").All(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestAllDoesNotFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, time.Second)
	_, err := gateway.NewResource[menuRow](client, "Menu").All(context.Background())
	require.Error(t, err)

	var statusErr *gateway.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.ErrorIs(t, err, gateway.ErrTransport)
	assert.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestCreatePostsJSONBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/MenuRoleMapping", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":99}`))
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, time.Second)
	mappings := gateway.NewResource[map[string]any](client, "MenuRoleMapping")
	raw, err := mappings.Create(context.Background(), map[string]any{"menuId": 3, "roleId": 1, "status": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":99}`, string(raw))
	assert.EqualValues(t, 1, body["status"])
}

func TestCreateSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate mapping", http.StatusConflict)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, time.Second)
	_, err := gateway.NewResource[map[string]any](client, "MenuRoleMapping").Create(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrTransport)
	assert.Contains(t, err.Error(), "duplicate mapping")
}
