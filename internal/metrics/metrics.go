// Package metrics exposes Prometheus collectors for the result service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	dbSessionsInUse            prometheus.Gauge
	dbAcquireFailuresTotal     prometheus.Counter
	resultsInsertedTotal       prometheus.Counter
	resultsDeletedTotal        prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)

		dbSessionsInUse = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pgrapher_db_sessions_in_use",
				Help: "Number of database sessions currently held by requests.",
			},
		)

		dbAcquireFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pgrapher_db_acquire_failures_total",
				Help: "Total number of failed database session acquisitions.",
			},
		)

		resultsInsertedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pgrapher_results_inserted_total",
				Help: "Total number of benchmark results recorded.",
			},
		)

		resultsDeletedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pgrapher_results_deleted_total",
				Help: "Total number of benchmark result rows deleted.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncSessionsInUse increments the in-use session gauge.
func IncSessionsInUse() {
	dbSessionsInUse.Inc()
}

// DecSessionsInUse decrements the in-use session gauge.
func DecSessionsInUse() {
	dbSessionsInUse.Dec()
}

// ObserveAcquireFailure counts a failed session acquisition.
func ObserveAcquireFailure() {
	dbAcquireFailuresTotal.Inc()
}

// ObserveInsert counts a recorded result.
func ObserveInsert() {
	resultsInsertedTotal.Inc()
}

// ObserveDelete adds the number of deleted rows.
func ObserveDelete(rows int64) {
	if rows > 0 {
		resultsDeletedTotal.Add(float64(rows))
	}
}
