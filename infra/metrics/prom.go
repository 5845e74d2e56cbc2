package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kereval/fieldops/core/metrics"
)

// PromSink records planning and commit events in Prometheus metrics.
type PromSink struct {
	planTasks   *prometheus.CounterVec
	planSeconds prometheus.Histogram
	commits     *prometheus.CounterVec
	suggestions *prometheus.CounterVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The metrics HTTP server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	planTasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_tasks_total",
		Help: "Tasks processed by planning passes, by outcome",
	}, []string{"outcome"})
	planSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planning_duration_seconds",
		Help:    "Duration of planning passes",
		Buckets: prometheus.DefBuckets,
	})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commit_events_total",
		Help: "Assignment commit attempts, by status and reason",
	}, []string{"applied", "reason"})
	suggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_suggestions_total",
		Help: "External optimizer suggestions, by reconciliation outcome",
	}, []string{"outcome"})

	if err := register(reg, &planTasks); err != nil {
		return nil, err
	}
	if err := registerHistogram(reg, &planSeconds); err != nil {
		return nil, err
	}
	if err := register(reg, &commits); err != nil {
		return nil, err
	}
	if err := register(reg, &suggestions); err != nil {
		return nil, err
	}

	return &PromSink{planTasks: planTasks, planSeconds: planSeconds, commits: commits, suggestions: suggestions}, nil
}

func register(reg prometheus.Registerer, cv **prometheus.CounterVec) error {
	if err := reg.Register(*cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*cv = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.Histogram) error {
	if err := reg.Register(*h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*h = are.ExistingCollector.(prometheus.Histogram)
			return nil
		}
		return err
	}
	return nil
}

// RecordPlan counts the outcome of a planning pass and its duration.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.planTasks.WithLabelValues("assigned").Add(float64(ev.Assigned))
	s.planTasks.WithLabelValues("unassigned").Add(float64(ev.Unassigned))
	s.planSeconds.Observe(ev.Duration.Seconds())
	return nil
}

// RecordCommit counts a commit attempt.
func (s *PromSink) RecordCommit(ev coremetrics.CommitEvent) error {
	reason := ev.Reason
	if ev.Applied {
		reason = ""
	}
	s.commits.WithLabelValues(strconv.FormatBool(ev.Applied), reason).Inc()
	return nil
}

// RecordReconcile counts suggestion outcomes from one reconciliation.
func (s *PromSink) RecordReconcile(ev coremetrics.ReconcileEvent) error {
	s.suggestions.WithLabelValues("accepted").Add(float64(ev.Accepted))
	s.suggestions.WithLabelValues("rejected").Add(float64(ev.Rejected))
	s.suggestions.WithLabelValues("fallback").Add(float64(ev.Fallbacks))
	return nil
}
