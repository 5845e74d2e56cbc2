package metrics

import coremetrics "github.com/kereval/fieldops/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordPlan(ev coremetrics.PlanEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommit forwards the event to all sinks.
func (m *MultiSink) RecordCommit(ev coremetrics.CommitEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCommit(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordReconcile forwards reconciliation events to sinks that support them.
func (m *MultiSink) RecordReconcile(ev coremetrics.ReconcileEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ReconcileRecorder); ok {
			if err := rec.RecordReconcile(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
