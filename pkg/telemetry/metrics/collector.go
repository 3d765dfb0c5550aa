package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ruleforge"
)

// Collector owns the Prometheus registry and every metric Ruleforge
// records: parse outcomes, evaluation outcomes and diagnostics, and HTTP
// request counts and latencies.
type Collector struct {
	registry *prometheus.Registry

	rulesParsed     *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
	evalDiagnostics *prometheus.CounterVec
	storedRules     prometheus.Gauge

	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry. If registry is
// nil a fresh one is used, which keeps tests isolated from each other.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		rulesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_parsed_total",
				Help:      "Total rule parse attempts by outcome (ok or the syntax error kind)",
			},
			[]string{"outcome"},
		),

		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total rule evaluations by boolean result",
			},
			[]string{"result"},
		),

		evalDiagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_diagnostics_total",
				Help:      "Conditions degraded to false during evaluation, by reason",
			},
			[]string{"reason"},
		),

		storedRules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stored_rules",
				Help:      "Number of rules currently stored",
			},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by path and status code",
			},
			[]string{"path", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(
		c.rulesParsed,
		c.evaluations,
		c.evalDiagnostics,
		c.storedRules,
		c.httpRequests,
		c.requestDuration,
	)

	return c
}

// RecordParse records one parse attempt. outcome is "ok" for success or
// the syntax error kind for failure.
func (c *Collector) RecordParse(outcome string) {
	c.rulesParsed.WithLabelValues(outcome).Inc()
}

// RecordEvaluation records one evaluation result.
func (c *Collector) RecordEvaluation(result bool) {
	label := "false"
	if result {
		label = "true"
	}
	c.evaluations.WithLabelValues(label).Inc()
}

// RecordDiagnostic records one evaluation diagnostic by reason.
func (c *Collector) RecordDiagnostic(reason string) {
	c.evalDiagnostics.WithLabelValues(reason).Inc()
}

// SetStoredRules updates the stored rule gauge.
func (c *Collector) SetStoredRules(n int) {
	c.storedRules.Set(float64(n))
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(path, code string, duration time.Duration) {
	c.httpRequests.WithLabelValues(path, code).Inc()
	c.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
