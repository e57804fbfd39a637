// Package metrics holds the Prometheus collectors of the service and the /metrics handler.
//
// Every method is safe on a nil *Metrics, which disables recording.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filemanager"

// Scan stages reported by RecordScanFailure.
const (
	StageList = "list"
	StageHead = "head"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	// ConflictScanFailures counts swallowed store failures while searching for a same-name file.
	// Labels: stage=[list, head]
	ConflictScanFailures *prometheus.CounterVec

	// IndexLookups counts name index lookups by result.
	// Labels: result=[hit, miss, stale, error]
	IndexLookups *prometheus.CounterVec

	// Uploads counts upload outcomes.
	// Labels: outcome=[created, conflict, replaced, kept_both, cancelled]
	Uploads *prometheus.CounterVec

	// HTTPRequests counts handled requests.
	// Labels: method, route, status
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency.
	// Labels: method, route
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also exposes Go runtime and process metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ConflictScanFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_scan_failures_total",
			Help:      "Store failures ignored while scanning for a file with the same name",
		}, []string{"stage"}),
		IndexLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "name_index_lookups_total",
			Help:      "Name index lookups by result",
		}, []string{"result"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests by outcome",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ConflictScanFailures,
		m.IndexLookups,
		m.Uploads,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordScanFailure(stage string) {
	if m == nil {
		return
	}
	m.ConflictScanFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordIndexLookup(result string) {
	if m == nil {
		return
	}
	m.IndexLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) }
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}

// Middleware records HTTPRequests and HTTPDuration for every request. The matched
// route pattern is used as label to keep cardinality bounded.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
