// Package metrics exposes application-level prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the service's domain instruments. All instruments are
// registered on the registry handed to New.
type Metrics struct {
	usageIngested     *prometheus.CounterVec
	invoicesGenerated prometheus.Counter
	billingRunFailed  prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		usageIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_usage_events_ingested_total",
			Help: "Usage events accepted by the ingest endpoint.",
		}, []string{"feature"}),
		invoicesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_invoices_generated_total",
			Help: "Invoices written by billing runs.",
		}),
		billingRunFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_billing_run_customer_failures_total",
			Help: "Customers skipped by billing runs due to errors.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tally_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.usageIngested,
		m.invoicesGenerated,
		m.billingRunFailed,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	return reg
}

func (m *Metrics) IncUsageIngested(feature string) {
	m.usageIngested.WithLabelValues(feature).Inc()
}

func (m *Metrics) IncInvoiceGenerated() {
	m.invoicesGenerated.Inc()
}

func (m *Metrics) AddBillingRunFailures(failed int) {
	m.billingRunFailed.Add(float64(failed))
}

func (m *Metrics) ObserveHTTPRequest(route, method, status string, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

// Module provides the registry and instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(NewRegistry),
	fx.Provide(New),
)
