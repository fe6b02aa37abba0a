// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wasmdev"

// Metrics groups the collectors of a single server process on a private
// registry so tests can create as many as they need.
type Metrics struct {
	Registry      *prometheus.Registry
	Requests      *prometheus.CounterVec
	WasmResponses *prometheus.CounterVec
	AssetCopies   *prometheus.CounterVec
	StyleBuilds   *prometheus.CounterVec
	Rebuilds      *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		WasmResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wasm_responses_total",
			Help:      "Responses produced by the wasm MIME shim, by status code.",
		}, []string{"status"}),
		AssetCopies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_copies_total",
			Help:      "Static asset copy operations, by result.",
		}, []string{"result"}),
		StyleBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "style_builds_total",
			Help:      "Style pipeline runs, by result.",
		}, []string{"result"}),
		Rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Output updates announced on the build event bus, by event kind.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.WasmResponses,
		m.AssetCopies,
		m.StyleBuilds,
		m.Rebuilds,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
