package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// DistanceLookups counts graph edge lookups by source: provider, fallback
	DistanceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_lookups_total", Help: "Graph edge weight lookups by source."},
		[]string{"source"},
	)
	// DistanceCacheHits counts cached distance results served without an API call
	DistanceCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_cache_hits_total", Help: "Distance cache hits and misses."},
		[]string{"result"},
	)
	// ProviderRequests counts ORS HTTP attempts by status code ("error" for transport failures)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_provider_requests_total", Help: "Distance provider HTTP attempts by status."},
		[]string{"status"},
	)

	// Optimizations counts optimization requests by outcome
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizations_total", Help: "Route optimizations by outcome."},
		[]string{"outcome"},
	)
	// OptimizationDuration records end-to-end optimization time in seconds
	OptimizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimization_duration_seconds", Help: "Route optimization duration in seconds.", Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}},
	)
	// Assignments counts assign outcomes by reason ("assigned" on success)
	Assignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "assignments_total", Help: "Order assignments by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(DistanceLookups)
		Registry.MustRegister(DistanceCacheHits)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(OptimizationDuration)
		Registry.MustRegister(Assignments)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
