package report

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsMultipartDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "true", r.FormValue("landscape"))
		assert.Equal(t, "11.7", r.FormValue("paperWidth"))
		assert.Equal(t, "0.4", r.FormValue("marginLeft"))
		file, header, err := r.FormFile("files")
		if assert.NoError(t, err) {
			assert.Equal(t, "index.html", header.Filename)
			data, _ := io.ReadAll(file)
			assert.Contains(t, string(data), "<table>")
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/").RenderHTML(context.Background(), "<html><body><table></table></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
}

func TestRenderHTMLUsesCustomLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "false", r.FormValue("landscape"))
		assert.Equal(t, "8.5", r.FormValue("paperWidth"))
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithLayout(Layout{PaperWidth: 8.5, PaperHeight: 11})
	_, err := client.RenderHTML(context.Background(), "<html></html>")
	require.NoError(t, err)
}

func TestRenderHTMLFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<html></html>")
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, http.StatusServiceUnavailable, renderErr.Status)
	assert.Equal(t, "chromium crashed", renderErr.Body)
}

func TestPing(t *testing.T) {
	status := "up"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	assert.NoError(t, client.Ping(context.Background()))
	status = "down"
	assert.Error(t, client.Ping(context.Background()))
}

func TestPingHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	h := NewHandler(NewClient(srv.URL), nil)
	rr := httptest.NewRecorder()
	h.ping(rr, httptest.NewRequest(http.MethodGet, "/report/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestPingHandlerUnavailable(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(downPinger{}, nil).ping(rr, httptest.NewRequest(http.MethodGet, "/report/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
