// Package metrics publishes simulation progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"anodize-ca/internal/sims/anodize"
)

const namespace = "anodize"

// Recorder is an anodize.Observer that mirrors every completed step into a
// Prometheus registry.
type Recorder struct {
	steps        prometheus.Counter
	interactions prometheus.Counter
	skipped      prometheus.Counter
	conflicts    prometheus.Counter
	fired        *prometheus.CounterVec
	cells        *prometheus.GaugeVec
	stepSeconds  prometheus.Histogram
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Completed simulation steps",
		}),
		interactions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Site pairs evaluated by the rule engine",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Partner picks outside the closed z range",
		}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Fired interactions dropped because a cell was already written in the step",
		}),
		fired: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_fires_total",
			Help:      "Interactions committed per rule",
		}, []string{"rule"}),
		cells: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells",
			Help:      "Cells per state after the last step",
		}, []string{"state"}),
		stepSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time spent per step",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
}

// ObserveStep implements anodize.Observer.
func (r *Recorder) ObserveStep(st anodize.StepStatistics) {
	r.steps.Inc()
	r.interactions.Add(float64(st.Interactions))
	r.skipped.Add(float64(st.Skipped))
	r.conflicts.Add(float64(st.Conflicts))
	for _, rule := range anodize.Rules() {
		if n := st.Fired[rule]; n > 0 {
			r.fired.WithLabelValues(rule.String()).Add(float64(n))
		}
	}
	for _, s := range anodize.States() {
		r.cells.WithLabelValues(s.String()).Set(float64(st.Counts[s]))
	}
	r.stepSeconds.Observe(st.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
