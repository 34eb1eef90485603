// Package masterstest drives a master screen end to end: real session and
// CSRF middleware over miniredis, and a fake remote service.
package masterstest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/app"
	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/listview"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/refdata"
	"github.com/finoracle/backoffice/internal/shared"
	"github.com/finoracle/backoffice/internal/view"
)

// Remote is a fake of the remote REST service.
type Remote struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]json.RawMessage
	lists    map[string]json.RawMessage
	failPage map[string]bool
	failList map[string]bool
	failPost map[string]int
	queries  map[string][]url.Values
	created  map[string][]json.RawMessage
}

// NewRemote starts the fake; it is closed with the test.
func NewRemote(t *testing.T) *Remote {
	t.Helper()
	rm := &Remote{
		pages:    map[string]json.RawMessage{},
		lists:    map[string]json.RawMessage{},
		failPage: map[string]bool{},
		failList: map[string]bool{},
		failPost: map[string]int{},
		queries:  map[string][]url.Values{},
		created:  map[string][]json.RawMessage{},
	}
	r := chi.NewRouter()
	r.Get("/api/{entity}/pagingwithsearch", rm.page)
	r.Get("/api/{entity}", rm.list)
	r.Post("/api/{entity}", rm.create)
	rm.Server = httptest.NewServer(r)
	t.Cleanup(rm.Server.Close)
	return rm
}

// APIBase is the root handed to the gateway client.
func (rm *Remote) APIBase() string {
	return rm.URL + "/api"
}

// SetPage serves results as the paged search answer of entity.
func (rm *Remote) SetPage(entity string, results any, rowCount int) {
	raw, _ := json.Marshal(map[string]any{"results": results, "rowCount": rowCount})
	rm.mu.Lock()
	rm.pages[entity] = raw
	rm.mu.Unlock()
}

// SetList serves items as the unpaged collection of entity.
func (rm *Remote) SetList(entity string, items any) {
	raw, _ := json.Marshal(items)
	rm.mu.Lock()
	rm.lists[entity] = raw
	rm.mu.Unlock()
}

// FailPage makes the paged search of entity answer 500.
func (rm *Remote) FailPage(entity string) {
	rm.mu.Lock()
	rm.failPage[entity] = true
	rm.mu.Unlock()
}

// FailList makes the unpaged collection of entity answer 500.
func (rm *Remote) FailList(entity string) {
	rm.mu.Lock()
	rm.failList[entity] = true
	rm.mu.Unlock()
}

// FailCreate makes creates of entity answer status.
func (rm *Remote) FailCreate(entity string, status int) {
	rm.mu.Lock()
	rm.failPost[entity] = status
	rm.mu.Unlock()
}

// Queries returns the paged search parameters received for entity.
func (rm *Remote) Queries(entity string) []url.Values {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return append([]url.Values(nil), rm.queries[entity]...)
}

// Created returns the create bodies received for entity.
func (rm *Remote) Created(entity string) []json.RawMessage {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return append([]json.RawMessage(nil), rm.created[entity]...)
}

func (rm *Remote) page(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	rm.mu.Lock()
	rm.queries[entity] = append(rm.queries[entity], r.URL.Query())
	fail := rm.failPage[entity]
	raw, ok := rm.pages[entity]
	rm.mu.Unlock()
	if fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if !ok {
		raw = json.RawMessage(`{"results":[],"rowCount":0}`)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (rm *Remote) list(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	rm.mu.Lock()
	fail := rm.failList[entity]
	raw, ok := rm.lists[entity]
	rm.mu.Unlock()
	if fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if !ok {
		raw = json.RawMessage(`[]`)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (rm *Remote) create(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	body, _ := io.ReadAll(r.Body)
	rm.mu.Lock()
	status := rm.failPost[entity]
	if status == 0 {
		rm.created[entity] = append(rm.created[entity], json.RawMessage(body))
	}
	rm.mu.Unlock()
	if status != 0 {
		http.Error(w, "rejected", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":99}`))
}

// Options tweak the collaborators of the screen under test.
type Options struct {
	PDF   masters.PDFRenderer
	Lists *listview.Store
	Stale masters.StaleRecorder
	// NoFixtures removes the offline datasets so remote failures surface.
	NoFixtures bool
}

// Harness serves one screen behind the session and CSRF middleware.
type Harness struct {
	t       *testing.T
	Remote  *Remote
	Redis   *miniredis.Miniredis
	Server  *httptest.Server
	Client  *http.Client
	Module  masters.Module
	Refdata *refdata.Loader
}

// New mounts the module returned by build.
func New(t *testing.T, build func(gw *gateway.Client, deps masters.Deps) masters.Module, opts Options) *Harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	remote := NewRemote(t)
	gwOpts := []gateway.Option{gateway.WithLogger(logger)}
	if opts.NoFixtures {
		gwOpts = append(gwOpts, gateway.WithFixtures(nil))
	}
	gw := gateway.NewClient(remote.APIBase(), 2*time.Second, gwOpts...)
	loader := refdata.NewLoader(refdata.NewCache(rdb, time.Minute), logger, nil, masters.ReferenceLists(gw)...)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	sessions := shared.NewSessionManager(rdb, "backoffice_session", "session-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	lists := opts.Lists
	if lists == nil {
		lists = listview.NewStore(listview.NewRedisSequencer(rdb, time.Hour))
	}
	module := build(gw, masters.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrf,
		Lists:     lists,
		Refdata:   loader,
		Guard:     shared.NewSubmitGuard(rdb, time.Minute),
		Stale:     opts.Stale,
		PDF:       opts.PDF,
	})

	router := chi.NewRouter()
	router.Use(app.SessionMiddleware(logger, sessions), app.CSRFMiddleware(logger, csrf))
	router.Route(module.Path(), module.MountRoutes)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &Harness{t: t, Remote: remote, Redis: mr, Server: server, Client: client, Module: module, Refdata: loader}
}

// Response is a fully read reply.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// Get requests path relative to the module root, e.g. "/table?page=2".
func (h *Harness) Get(path string) Response {
	h.t.Helper()
	resp, err := h.Client.Get(h.Server.URL + h.Module.Path() + path)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

// Post submits values to the module root.
func (h *Harness) Post(values url.Values) Response {
	h.t.Helper()
	resp, err := h.Client.PostForm(h.Server.URL+h.Module.Path(), values)
	require.NoError(h.t, err)
	return read(h.t, resp)
}

var (
	csrfPattern   = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	submitPattern = regexp.MustCompile(`name="submit_token" value="([^"]+)"`)
)

// OpenForm loads the create form and returns values pre-filled with the CSRF
// and submit tokens it carries.
func (h *Harness) OpenForm() url.Values {
	h.t.Helper()
	resp := h.Get("/new")
	require.Equal(h.t, http.StatusOK, resp.Status)
	return Tokens(h.t, resp.Body)
}

// Tokens extracts the hidden tokens of a rendered form.
func Tokens(t *testing.T, body string) url.Values {
	t.Helper()
	csrf := csrfPattern.FindStringSubmatch(body)
	require.Len(t, csrf, 2, "csrf token missing")
	submit := submitPattern.FindStringSubmatch(body)
	require.Len(t, submit, 2, "submit token missing")
	return url.Values{
		shared.CSRFFormField:    {csrf[1]},
		shared.SubmitTokenField: {submit[1]},
	}
}

// Merge copies fields into values and returns it.
func Merge(values url.Values, fields map[string]string) url.Values {
	for k, v := range fields {
		values.Set(k, v)
	}
	return values
}

func read(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: strings.TrimSpace(string(body))}
}
