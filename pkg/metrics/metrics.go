// Package metrics provides the Prometheus registry and HTTP instrumentation
// for the Pokédex proxy. Upstream and cache metrics are defined in their
// respective packages (client, cache) to keep them next to the code that
// records them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_http_requests_total",
		Help: "Total HTTP requests served by route, method and status",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokedex_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per chi route pattern.
// Unmatched requests are labelled "unmatched" so cardinality stays bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := RoutePattern(r)

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RoutePattern returns the matched chi route pattern for r.
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}

// Metrics Documentation
//
// Upstream Metrics (pkg/client):
//   - pokeapi_requests_total{resource, status} (Counter): PokeAPI requests by resource and HTTP status
//   - pokeapi_request_duration_seconds{resource} (Histogram): PokeAPI request duration
//   - pokeapi_errors_total{kind} (Counter): Failed calls by kind (http_status, unreachable, unexpected)
//
// Cache Metrics (pkg/cache):
//   - pokedex_cache_hits_total{layer} (Counter): Cache hits by layer (redis, memory)
//   - pokedex_cache_misses_total{layer} (Counter): Cache misses by layer
//   - pokedex_cache_errors_total{layer, operation} (Counter): Cache operation errors
//
// HTTP Metrics (pkg/metrics):
//   - pokedex_http_requests_total{route, method, status} (Counter): Requests served
//   - pokedex_http_request_duration_seconds{route} (Histogram): Handler latency
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pokedex_cache_hits_total[5m])) /
//   (sum(rate(pokedex_cache_hits_total[5m])) + sum(rate(pokedex_cache_misses_total[5m])))
//
//   # Upstream Unreachable Rate
//   rate(pokeapi_errors_total{kind="unreachable"}[5m])
//
//   # P95 Detail Latency
//   histogram_quantile(0.95, rate(pokedex_http_request_duration_seconds_bucket{route="/pokemon/{id}"}[5m]))
