// Package metrics exposes Prometheus collectors for HTTP traffic and lead workflows.
// Every method is nil-safe so callers can run without metrics wired.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "leads"

// Metrics groups the collectors registered by the application.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	transitionTime  prometheus.Histogram
	importRows      *prometheus.CounterVec
	callbacksQueued *prometheus.CounterVec
}

// New creates the collectors and registers them on reg (DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Lead status transitions by outcome",
		}, []string{"outcome"}),
		transitionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transition_duration_seconds",
			Help:      "Duration of the transition unit of work",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "CSV import rows by result",
		}, []string{"result"}),
		callbacksQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "callbacks",
			Name:      "reminders_total",
			Help:      "Callback reminder tasks by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.transitions, m.transitionTime, m.importRows, m.callbacksQueued)
	return m
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveTransition records one transition attempt.
// The outcome is an error code, "error", "changed", "noted" or "noop".
func (m *Metrics) ObserveTransition(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(outcome).Inc()
	m.transitionTime.Observe(d.Seconds())
}

// ObserveImport adds the per-result row counts of one CSV import.
func (m *Metrics) ObserveImport(imported, updated, duplicates, invalid int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("updated").Add(float64(updated))
	m.importRows.WithLabelValues("duplicate").Add(float64(duplicates))
	m.importRows.WithLabelValues("invalid").Add(float64(invalid))
}

// ObserveReminder records a callback reminder enqueue or delivery.
func (m *Metrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.callbacksQueued.WithLabelValues(status).Inc()
}
