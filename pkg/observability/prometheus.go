package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface with Prometheus
// collectors. Register it once with SetPipelineHooks, SetCacheHooks and
// SetHTTPHooks.
type PrometheusHooks struct {
	compileTotal    *prometheus.CounterVec
	compileDuration prometheus.Histogram
	mapElements     prometheus.Histogram
	layoutTotal     *prometheus.CounterVec
	layoutDuration  prometheus.Histogram
	orphans         prometheus.Gauge
	moves           *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		compileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_compile_total",
			Help: "Compilations by result",
		}, []string{"result"}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardley_compile_duration_seconds",
			Help:    "Time spent compiling notation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		mapElements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardley_map_elements",
			Help:    "Elements per compiled map",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		layoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_layout_total",
			Help: "Layouts by result",
		}, []string{"result"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardley_layout_duration_seconds",
			Help:    "Time spent computing layouts",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		orphans: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wardley_overlay_orphans",
			Help: "Orphaned overlay records in the last layout",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_overlay_moves_total",
			Help: "Overlay moves by result",
		}, []string{"result"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardley_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wardley_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		h.compileTotal, h.compileDuration, h.mapElements,
		h.layoutTotal, h.layoutDuration, h.orphans, h.moves,
		h.cacheEvents, h.cacheBytes,
		h.httpRequests, h.httpDuration,
	)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnCompileStart(context.Context, int) {}

func (h *PrometheusHooks) OnCompileComplete(_ context.Context, elements int, d time.Duration, err error) {
	h.compileTotal.WithLabelValues(result(err)).Inc()
	h.compileDuration.Observe(d.Seconds())
	if err == nil {
		h.mapElements.Observe(float64(elements))
	}
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, orphans int, d time.Duration, err error) {
	h.layoutTotal.WithLabelValues(result(err)).Inc()
	h.layoutDuration.Observe(d.Seconds())
	if err == nil {
		h.orphans.Set(float64(orphans))
	}
}

func (h *PrometheusHooks) OnOverlayMove(_ context.Context, _ string, err error) {
	h.moves.WithLabelValues(result(err)).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
