// Package metrics provides Prometheus metrics for the session and
// progression engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CompletionsTotal   *prometheus.CounterVec
	ExperienceAwarded  prometheus.Counter
	SessionsTotal      *prometheus.CounterVec
	GeneratorFailures  *prometheus.CounterVec
	CommitRetriesTotal prometheus.Counter

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		CompletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_completions_total",
				Help: "Completed work items by kind.",
			},
			[]string{"kind"},
		),
		ExperienceAwarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ascend_experience_awarded_total",
				Help: "Experience points awarded.",
			},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_sessions_total",
				Help: "Session lifecycle transitions by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		GeneratorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ascend_generator_failures_total",
				Help: "Generation requests that degraded to no result, by operation.",
			},
			[]string{"operation"},
		),
		CommitRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ascend_commit_retries_total",
				Help: "Retried critical commits.",
			},
		),
		registry: reg,
	}
	reg.MustRegister(m.CompletionsTotal, m.ExperienceAwarded, m.SessionsTotal, m.GeneratorFailures, m.CommitRetriesTotal)
	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordCompletion(kind string, experience int) {
	if m == nil {
		return
	}
	m.CompletionsTotal.WithLabelValues(kind).Inc()
	m.ExperienceAwarded.Add(float64(experience))
}

func (m *Metrics) RecordSession(kind, outcome string) {
	if m == nil {
		return
	}
	m.SessionsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordGeneratorFailure(operation string) {
	if m == nil {
		return
	}
	m.GeneratorFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordCommitRetry() {
	if m == nil {
		return
	}
	m.CommitRetriesTotal.Inc()
}
