// Package metrics holds the Prometheus instrumentation for ledger operations
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcome statuses
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Metrics holds all Prometheus metrics for ledger operations
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	transactions      prometheus.Gauge
	controlSum        prometheus.Gauge

	// HTTP request metrics, only touched by the API server
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwledger_operations_total",
				Help: "Total number of ledger operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fwledger_operation_duration_seconds",
				Help:    "Ledger operation duration in seconds, load and persist included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		transactions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fwledger_transactions",
				Help: "Footer transaction counter after the last mutation",
			},
		),

		controlSum: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fwledger_control_sum_scaled",
				Help: "Footer control sum (scaled by 100) after the last mutation",
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fwledger_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fwledger_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordOperation records one ledger operation
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateAggregates records the footer values after a mutation
func (m *Metrics) UpdateAggregates(transactions, controlSum int64) {
	if m == nil {
		return
	}
	m.transactions.Set(float64(transactions))
	m.controlSum.Set(float64(controlSum))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
