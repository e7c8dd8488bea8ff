// Package metrics holds the Prometheus collectors shared by the client, the
// loaders and the mutation façade.
//
// Collectors register with the default registry through promauto. Handler
// exposes them for scraping when a metrics address is configured.
//
// Request metrics (internal/resource):
//   - tabula_requests_total{method, status} (Counter)
//   - tabula_request_duration_seconds{method} (Histogram)
//
// Loader metrics (internal/fetch):
//   - tabula_loads_total{loader, outcome} (Counter)
//
// Mutation metrics (internal/mutation):
//   - tabula_mutations_total{op, result} (Counter)
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabula_requests_total",
		Help: "REST requests by method and HTTP status (or failure class)",
	}, []string{"method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tabula_request_duration_seconds",
		Help:    "REST request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method"})

	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabula_loads_total",
		Help: "Settled loads by loader and outcome (loaded, failed, cancelled, stale)",
	}, []string{"loader", "outcome"})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabula_mutations_total",
		Help: "Record mutations by operation and result",
	}, []string{"op", "result"})
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
