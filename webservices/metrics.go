package webservices

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "opencartonaut"

// Metrics holds the Prometheus collectors of the server, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	tileRenderDuration prometheus.Histogram
	styleEvaluations   prometheus.Counter
	ruleCacheLookups   *prometheus.CounterVec
	queriedFeatures    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		tileRenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "tile_render_duration_seconds",
				Help:      "Duration of rendering one raster tile in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
		),
		styleEvaluations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "style_evaluations_total",
				Help:      "Total number of features evaluated against a rule set through the API",
			},
		),
		ruleCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rule_cache_lookups_total",
				Help:      "Lookups of parsed MapCSS in the rule cache",
			},
			[]string{"result"},
		),
		queriedFeatures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "queried_features_total",
				Help:      "Features received from query sections, by subpart",
			},
			[]string{"subpart"},
		),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.tileRenderDuration,
		m.styleEvaluations,
		m.ruleCacheLookups,
		m.queriedFeatures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records the duration of every request, labelled with its chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil && routeCtx.RoutePattern() != "" {
			route = routeCtx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(startTime).Seconds())
	}

	return http.HandlerFunc(fn)
}
