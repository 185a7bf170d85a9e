package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry and the collectors shared by
// the server and the client.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	remoteRequests  *prometheus.CounterVec
	storeOperations *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dayplanner_remote_requests_total",
				Help: "Requests issued by the planner client to the backend",
			},
			[]string{"method", "path", "outcome"},
		),
		storeOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dayplanner_document_store_operations_total",
				Help: "Document repository operations by kind and outcome",
			},
			[]string{"operation", "kind", "outcome"},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.remoteRequests, m.storeOperations)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRemote counts one client request.
func (m *Metrics) ObserveRemote(method, path, outcome string) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(method, path, outcome).Inc()
}

// RemoteOutcomes sums client requests by outcome label.
func (m *Metrics) RemoteOutcomes() map[string]int {
	totals := map[string]int{}
	if m == nil {
		return totals
	}
	families, err := m.registry.Gather()
	if err != nil {
		return totals
	}
	for _, family := range families {
		if family.GetName() != "dayplanner_remote_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					totals[label.GetValue()] += int(metric.GetCounter().GetValue())
				}
			}
		}
	}
	return totals
}

// ObserveStore counts one repository operation.
func (m *Metrics) ObserveStore(operation, kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOperations.WithLabelValues(operation, kind, outcome).Inc()
}
