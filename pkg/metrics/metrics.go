package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application collectors.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	BlobOps      *prometheus.CounterVec
	Documents    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docportal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docportal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		BlobOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docportal",
			Name:      "blob_operations_total",
			Help:      "Blob storage calls by operation and result.",
		}, []string{"op", "result"}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docportal",
			Name:      "document_transitions_total",
			Help:      "Document status transitions.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.BlobOps, m.Documents)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Blob records one blob storage call.
func (m *Metrics) Blob(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BlobOps.WithLabelValues(op, result).Inc()
}

// Transition records a document entering status.
func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(status).Inc()
}
