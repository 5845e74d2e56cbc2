package metrics

import "time"

// PlanEvent records the outcome of one planning pass.
type PlanEvent struct {
	Assigned   int
	Unassigned int
	Duration   time.Duration
	Time       time.Time
}

// ReconcileEvent records how external optimizer suggestions were merged.
type ReconcileEvent struct {
	Accepted  int
	Rejected  int
	Fallbacks int
	// OptimizerReached is false when the gateway degraded to the local plan
	// without receiving suggestions.
	OptimizerReached bool
	Time             time.Time
}

// CommitEvent records a single assignment commit attempt.
type CommitEvent struct {
	TaskID       string
	TechnicianID string
	Applied      bool
	Reason       string
	Time         time.Time
}

// MetricsSink persists planning and commit events.
type MetricsSink interface {
	RecordPlan(PlanEvent) error
	RecordCommit(CommitEvent) error
}

// ReconcileRecorder is implemented by sinks that track optimizer
// reconciliation outcomes.
type ReconcileRecorder interface {
	RecordReconcile(ReconcileEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error           { return nil }
func (NopSink) RecordCommit(CommitEvent) error       { return nil }
func (NopSink) RecordReconcile(ReconcileEvent) error { return nil }
