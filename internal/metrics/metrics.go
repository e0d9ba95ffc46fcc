// Package metrics exposes Prometheus collectors for the dashboard backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat send outcomes.
const (
	ChatOutcomeOK      = "ok"
	ChatOutcomeOffline = "offline"
	ChatOutcomeError   = "error"
	ChatOutcomeEmpty   = "empty"
)

// Metrics bundles the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	simulations     prometheus.Counter
	poolOverflow    prometheus.Gauge
	chatSends       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates a registry with the process and Go collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mandato",
			Subsystem: "allocation",
			Name:      "simulations_total",
			Help:      "Number of Slice Pie allocation simulations computed.",
		}),
		poolOverflow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mandato",
			Subsystem: "allocation",
			Name:      "pool_overflow",
			Help:      "1 when the last simulation distributed more than the pool.",
		}),
		chatSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mandato",
			Subsystem: "chat",
			Name:      "sends_total",
			Help:      "Chat messages sent to the assistant by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mandato",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.simulations,
		m.poolOverflow,
		m.chatSends,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSimulation records one simulation and its overflow state.
func (m *Metrics) ObserveSimulation(overflow bool) {
	if m == nil {
		return
	}
	m.simulations.Inc()
	if overflow {
		m.poolOverflow.Set(1)
	} else {
		m.poolOverflow.Set(0)
	}
}

// ObserveChatSend counts one chat send.
func (m *Metrics) ObserveChatSend(outcome string) {
	if m == nil {
		return
	}
	m.chatSends.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
