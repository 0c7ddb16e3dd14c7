package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements BuildHooks, CacheHooks and QueryHooks with
// Prometheus collectors.
type PrometheusHooks struct {
	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	levelStates   *prometheus.GaugeVec
	tableFilled   *prometheus.GaugeVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// NewPrometheusHooks registers the collectors with reg and returns hooks
// that update them. Passing nil registers nothing, which keeps tests free of
// duplicate-registration panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		buildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patterndb_builds_total",
			Help: "Table builds by table and result",
		}, []string{"table", "result"}),
		buildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patterndb_build_duration_seconds",
			Help:    "Wall time of table builds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"table"}),
		levelStates: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patterndb_level_states",
			Help: "Indices first reached at each breadth-first depth",
		}, []string{"table", "depth"}),
		tableFilled: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patterndb_table_filled",
			Help: "Populated entries in the most recent build",
		}, []string{"table"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patterndb_cache_events_total",
			Help: "Table cache lookups and writes",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patterndb_cache_written_bytes_total",
			Help: "Bytes written to the table cache",
		}, []string{"key_type"}),
		queriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patterndb_queries_total",
			Help: "Distance lookups by table and result",
		}, []string{"table", "result"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patterndb_query_duration_seconds",
			Help:    "Distance lookup duration",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
		}, []string{"table"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *PrometheusHooks) OnBuildStart(_ context.Context, table string, _ int) {
	h.tableFilled.WithLabelValues(table).Set(0)
}

func (h *PrometheusHooks) OnLevel(_ context.Context, table string, depth int, count int) {
	h.levelStates.WithLabelValues(table, strconv.Itoa(depth)).Set(float64(count))
}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, table string, filled int, d time.Duration, err error) {
	h.buildsTotal.WithLabelValues(table, result(err)).Inc()
	h.buildDuration.WithLabelValues(table).Observe(d.Seconds())
	h.tableFilled.WithLabelValues(table).Set(float64(filled))
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

func (h *PrometheusHooks) OnQuery(_ context.Context, table string, d time.Duration, err error) {
	h.queriesTotal.WithLabelValues(table, result(err)).Inc()
	h.queryDuration.WithLabelValues(table).Observe(d.Seconds())
}

var (
	_ BuildHooks = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ QueryHooks = (*PrometheusHooks)(nil)
)
