package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	assessmentRunsTotal   *prometheus.CounterVec
	assessmentRunDuration *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the assessment pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procsight",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "procsight",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procsight",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		assessmentRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procsight",
			Name:      "assessment_runs_total",
			Help:      "Total number of assessment runs by terminal status.",
		}, []string{"status"})

		assessmentRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "procsight",
			Name:      "assessment_run_duration_seconds",
			Help:      "Wall-clock duration of complete assessment runs.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"model"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			assessmentRunsTotal,
			assessmentRunDuration,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssessmentRuns exposes the counter for finished assessment runs.
func AssessmentRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return assessmentRunsTotal
}

// AssessmentRunDuration exposes the histogram of assessment run durations.
func AssessmentRunDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return assessmentRunDuration
}

// MetricsHandler adapts the Prometheus scrape handler to a Fiber route,
// registering the collectors on first use.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
