package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/masters/{screen}")

	req := httptest.NewRequest(http.MethodGet, "/masters/menus", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `backoffice_http_requests_total{code="418",route="/masters/{screen}"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `backoffice_http_request_duration_seconds_bucket{route="/masters/{screen}"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestGatewayCollectors(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveGatewayRequest("Menu", "page", "error", 120*time.Millisecond)
	metrics.IncGatewayFallback("Menu")
	metrics.IncGatewayFallback("Menu")
	metrics.IncStaleResponse("menus")
	metrics.IncRefdataLoad("roles", "hit")

	body := scrape(t, metrics)
	for _, want := range []string{
		`backoffice_gateway_requests_total{entity="Menu",op="page",outcome="error"} 1`,
		`backoffice_gateway_fixture_fallbacks_total{entity="Menu"} 2`,
		`backoffice_listview_stale_responses_total{screen="menus"} 1`,
		`backoffice_refdata_loads_total{list="roles",result="hit"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.IncGatewayFallback("Menu")
	metrics.ObserveGatewayRequest("Menu", "page", "ok", time.Millisecond)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
