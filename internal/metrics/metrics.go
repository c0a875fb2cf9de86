// Package metrics exposes Prometheus instrumentation for the progress store,
// the analysis client and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

const namespace = "makerlog"

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	projectsAdded   prometheus.Counter
	stepsCompleted  *prometheus.CounterVec
	trackedProjects prometheus.Gauge
	analysisCalls   *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projectsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_added_total",
			Help:      "Projects added to the progress store",
		}),
		stepsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_completed_total",
			Help:      "Step completion events, split by whether the step was already complete",
		}, []string{"repeat"}),
		trackedProjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_projects",
			Help:      "Projects currently held by the progress store",
		}),
		analysisCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_calls_total",
			Help:      "Calls to the analysis backend",
		}, []string{"operation", "outcome"}),
		analysisLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_call_duration_seconds",
			Help:      "Latency of analysis backend calls including retries",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.projectsAdded,
		m.stepsCompleted,
		m.trackedProjects,
		m.analysisCalls,
		m.analysisLatency,
		m.httpRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// StoreListener counts progress store events.
func (m *Metrics) StoreListener() progress.Listener {
	return func(ev progress.Event) {
		switch ev.Type {
		case progress.EventProjectAdded:
			m.projectsAdded.Inc()
			m.trackedProjects.Inc()
		case progress.EventStepCompleted:
			m.stepsCompleted.WithLabelValues(strconv.FormatBool(ev.Repeat)).Inc()
		}
	}
}

// ObserveAnalysis records one analysis backend call.
func (m *Metrics) ObserveAnalysis(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.analysisCalls.WithLabelValues(operation, outcome).Inc()
	m.analysisLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
