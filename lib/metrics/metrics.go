// Package metrics holds the Prometheus collectors of the supply service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service collectors.
	Registry = prometheus.NewRegistry()

	recomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supply",
			Name:      "recomputes_total",
			Help:      "Total number of supply recomputations by result.",
		},
		[]string{"result"},
	)

	recomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "supply",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of supply recomputations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	providerQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supply",
			Subsystem: "ledger",
			Name:      "queries_total",
			Help:      "Total number of ledger provider queries by query and result.",
		},
		[]string{"query", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supply",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		recomputes,
		recomputeDuration,
		providerQueries,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Recompute records the outcome and duration of a supply recomputation started at start.
func Recompute(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}

	recomputes.WithLabelValues(result).Inc()
	recomputeDuration.Observe(time.Since(start).Seconds())
}

// ProviderQuery records a ledger provider query.
func ProviderQuery(query, result string) {
	providerQueries.WithLabelValues(query, result).Inc()
}

// HTTPRequest records a served HTTP request.
func HTTPRequest(method, path string, status int) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
