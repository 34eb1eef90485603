package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the back office.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	gatewayRequests  *prometheus.CounterVec
	gatewayDuration  *prometheus.HistogramVec
	gatewayFallbacks *prometheus.CounterVec
	staleResponses   *prometheus.CounterVec
	refdataLoads     *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	gatewayRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_gateway_requests_total",
		Help: "Calls to the remote API by entity, operation and outcome.",
	}, []string{"entity", "op", "outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_gateway_request_duration_seconds",
		Help:    "Remote API latency by entity and operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "op"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_gateway_fixture_fallbacks_total",
		Help: "Paged searches answered from the bundled fixture.",
	}, []string{"entity"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_listview_stale_responses_total",
		Help: "List responses discarded because a newer request was issued.",
	}, []string{"screen"})
	refdata := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_refdata_loads_total",
		Help: "Reference list loads by list name and result.",
	}, []string{"list", "result"})
	registry.MustRegister(requests, duration, gatewayRequests, gatewayDuration, fallbacks, stale, refdata)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		gatewayRequests:  gatewayRequests,
		gatewayDuration:  gatewayDuration,
		gatewayFallbacks: fallbacks,
		staleResponses:   stale,
		refdataLoads:     refdata,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and duration for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveGatewayRequest records one remote API call.
func (m *Metrics) ObserveGatewayRequest(entity, op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(entity, op, outcome).Inc()
	m.gatewayDuration.WithLabelValues(entity, op).Observe(elapsed.Seconds())
}

// IncGatewayFallback counts a fixture substitution.
func (m *Metrics) IncGatewayFallback(entity string) {
	if m == nil {
		return
	}
	m.gatewayFallbacks.WithLabelValues(entity).Inc()
}

// IncStaleResponse counts a superseded list response.
func (m *Metrics) IncStaleResponse(screen string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(screen).Inc()
}

// IncRefdataLoad counts a reference list load; result is hit, miss or error.
func (m *Metrics) IncRefdataLoad(list, result string) {
	if m == nil {
		return
	}
	m.refdataLoads.WithLabelValues(list, result).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
