package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	simulationsGenerated   *prometheus.CounterVec
	reconstructions        *prometheus.CounterVec
	reconstructionDuration prometheus.Histogram
	anomaliesCorrected     *prometheus.CounterVec
	cacheRequests          *prometheus.CounterVec
	artifactsArchived      prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.simulationsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiveten_simulations_generated_total",
			Help: "Total number of precomputed simulations generated",
		},
		[]string{"mode", "period"},
	)
	r.reconstructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiveten_reconstructions_total",
			Help: "Total number of continuation reconstructions",
		},
		[]string{"mode", "status"},
	)
	r.reconstructionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fiveten_reconstruction_duration_seconds",
			Help:    "Continuation reconstruction duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
	r.anomaliesCorrected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiveten_anomalies_corrected_total",
			Help: "Total number of anomalous data points corrected",
		},
		[]string{"kind"},
	)
	r.cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiveten_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)
	r.artifactsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fiveten_artifacts_archived_total",
			Help: "Total number of artifacts archived",
		},
	)

	reg.MustRegister(r.simulationsGenerated)
	reg.MustRegister(r.reconstructions)
	reg.MustRegister(r.reconstructionDuration)
	reg.MustRegister(r.anomaliesCorrected)
	reg.MustRegister(r.cacheRequests)
	reg.MustRegister(r.artifactsArchived)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSimulation records a generated precomputed simulation.
func (r *Registry) RecordSimulation(mode, period string) {
	r.simulationsGenerated.WithLabelValues(mode, period).Inc()
}

// RecordReconstruction records a continuation reconstruction.
func (r *Registry) RecordReconstruction(mode, status string, duration float64) {
	r.reconstructions.WithLabelValues(mode, status).Inc()
	r.reconstructionDuration.Observe(duration)
}

// RecordAnomaly records a corrected data anomaly.
func (r *Registry) RecordAnomaly(kind string) {
	r.anomaliesCorrected.WithLabelValues(kind).Inc()
}

// RecordCache records a cache lookup result.
func (r *Registry) RecordCache(cache, result string) {
	r.cacheRequests.WithLabelValues(cache, result).Inc()
}

// RecordArchive records an archived artifact.
func (r *Registry) RecordArchive() {
	r.artifactsArchived.Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
