// Package metrics owns the Prometheus collectors of the ledger core.
//
// All recording methods are safe on a nil *Metrics so tests and one-shot
// commands can run without a registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	// Registry is private so repeated construction in tests never collides.
	Registry *prometheus.Registry

	mutations         *prometheus.CounterVec
	goalSkips         *prometheus.CounterVec
	recurringRuns     prometheus.Counter
	recurringCreated  prometheus.Counter
	recurringFailures *prometheus.CounterVec
	recurringDuration prometheus.Histogram
	publishFailures   *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_transaction_mutations_total",
				Help: "Committed transaction mutations by operation.",
			},
			[]string{"op"},
		),
		goalSkips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_goal_contribution_skipped_total",
				Help: "Goal contributions skipped because the goal no longer exists.",
			},
			[]string{"phase"},
		),
		recurringRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "saldo_recurring_runs_total",
			Help: "Recurring engine invocations.",
		}),
		recurringCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "saldo_recurring_materialized_total",
			Help: "Transactions materialized from recurring definitions.",
		}),
		recurringFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_recurring_failures_total",
				Help: "Recurring definitions that failed to materialize, by reason.",
			},
			[]string{"reason"},
		),
		recurringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "saldo_recurring_run_duration_seconds",
			Help:    "Duration of a recurring engine run.",
			Buckets: prometheus.DefBuckets,
		}),
		publishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_event_publish_failures_total",
				Help: "Events that could not be published.",
			},
			[]string{"routing_key"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saldo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status class.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_cache_lookups_total",
				Help: "Cache lookups by cache and result.",
			},
			[]string{"cache", "result"},
		),
	}
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) IncMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) IncGoalSkip(phase string) {
	if m == nil {
		return
	}
	m.goalSkips.WithLabelValues(phase).Inc()
}

// ObserveRecurringRun records one engine run and how many rows it produced.
func (m *Metrics) ObserveRecurringRun(created int, d time.Duration) {
	if m == nil {
		return
	}
	m.recurringRuns.Inc()
	m.recurringCreated.Add(float64(created))
	m.recurringDuration.Observe(d.Seconds())
}

func (m *Metrics) IncRecurringFailure(reason string) {
	if m == nil {
		return
	}
	m.recurringFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncPublishFailure(routingKey string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(routingKey).Inc()
}

func (m *Metrics) ObserveHTTP(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

func (m *Metrics) IncCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecurringFailures exposes the failure counter for assertions in tests of
// other packages.
func (m *Metrics) RecurringFailures() *prometheus.CounterVec {
	return m.recurringFailures
}
