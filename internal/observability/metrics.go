package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "league_sync"

var breakerStates = []string{"closed", "open", "half_open"}

// Metrics owns a private Prometheus registry. It satisfies sleeper.RequestObserver and usecase.SyncObserver.
type Metrics struct {
	registry       *prometheus.Registry
	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec
	syncRuns       *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	leagueOutcomes *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Remote platform requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Remote platform request latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "remote",
			Name:      "circuit_state",
			Help:      "1 for the current circuit breaker state, 0 otherwise.",
		}, []string{"breaker", "state"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sync passes by outcome (ok, partial, fatal).",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one sync pass.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		leagueOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "leagues_total",
			Help:      "Per-league reconciliation results by status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.remoteRequests,
		m.remoteLatency,
		m.breakerState,
		m.syncRuns,
		m.syncDuration,
		m.leagueOutcomes,
	)
	return m
}

func (m *Metrics) ObserveRemoteRequest(endpoint, outcome string, elapsed time.Duration) {
	m.remoteRequests.WithLabelValues(endpoint, outcome).Inc()
	m.remoteLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) SetBreakerState(name, state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1
		}
		m.breakerState.WithLabelValues(name, s).Set(value)
	}
}

func (m *Metrics) ObserveSync(outcome string, elapsed time.Duration) {
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveLeague(status string) {
	m.leagueOutcomes.WithLabelValues(status).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
