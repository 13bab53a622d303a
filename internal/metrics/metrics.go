// Package metrics exposes Prometheus counters for upstream attempts and
// download outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry  *prometheus.Registry
	attempts  *prometheus.CounterVec
	downloads *prometheus.CounterVec
}

// New registers the service collectors plus Go runtime and process metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetproxy",
			Name:      "fetch_attempts_total",
			Help:      "Candidate endpoint attempts by endpoint host and result.",
		}, []string{"endpoint", "result"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetproxy",
			Name:      "downloads_total",
			Help:      "Assembled download outcomes by result class.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.attempts,
		m.downloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAttempt counts one candidate attempt.
func (m *Metrics) ObserveAttempt(endpoint string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.attempts.WithLabelValues(endpoint, result).Inc()
}

// ObserveDownload counts one pipeline outcome ("success", "not_found",
// "unsupported_type", "validation", "persistence", "error").
func (m *Metrics) ObserveDownload(outcome string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
