package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dripcalc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dripcalc_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dripcalc_http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(32, 4, 6),
		},
		[]string{"method", "endpoint"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dripcalc_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(32, 4, 6),
		},
		[]string{"method", "endpoint"},
	)

	// Dosing metrics
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dripcalc_decisions_total",
			Help: "Total number of rate decisions computed",
		},
		[]string{"policy", "severity"},
	)

	DecisionBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dripcalc_decision_batch_size",
			Help:    "Number of readings per decision request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dripcalc_validation_errors_total",
			Help: "Total number of rejected inputs",
		},
		[]string{"reason"}, // invalid_input, unknown_policy, malformed
	)

	InitialDosesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dripcalc_initial_doses_total",
			Help: "Total number of initial doses computed",
		},
	)

	// Config reloads
	ConfigReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dripcalc_config_reloads_total",
			Help: "Total number of configuration reload attempts",
		},
		[]string{"status"}, // status: success, failed
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dripcalc_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
