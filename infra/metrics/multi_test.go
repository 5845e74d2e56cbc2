package metrics

import (
	"testing"

	coremetrics "github.com/kereval/fieldops/core/metrics"
)

type recordSink struct {
	plans      int
	commits    int
	reconciles int
}

func (r *recordSink) RecordPlan(coremetrics.PlanEvent) error {
	r.plans++
	return nil
}

func (r *recordSink) RecordCommit(coremetrics.CommitEvent) error {
	r.commits++
	return nil
}

func (r *recordSink) RecordReconcile(coremetrics.ReconcileEvent) error {
	r.reconciles++
	return nil
}

// planCommitSink lacks the reconcile capability.
type planCommitSink struct {
	coremetrics.NopSink
	calls int
}

func (p *planCommitSink) RecordPlan(coremetrics.PlanEvent) error {
	p.calls++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPlan(coremetrics.PlanEvent{}); err != nil {
		t.Fatalf("record plan: %v", err)
	}
	if err := m.RecordCommit(coremetrics.CommitEvent{}); err != nil {
		t.Fatalf("record commit: %v", err)
	}
	if err := m.RecordReconcile(coremetrics.ReconcileEvent{}); err != nil {
		t.Fatalf("record reconcile: %v", err)
	}
	if s1.plans != 1 || s1.commits != 1 || s1.reconciles != 1 {
		t.Fatalf("events not forwarded to first sink")
	}
	if s2.plans != 1 || s2.commits != 1 || s2.reconciles != 1 {
		t.Fatalf("events not forwarded to second sink")
	}
}

// Sinks without reconcile support are skipped, not broken.
func TestMultiSink_OptionalReconcile(t *testing.T) {
	plain := &planCommitSink{}
	m := NewMultiSink(plain)
	if err := m.RecordReconcile(coremetrics.ReconcileEvent{Accepted: 1}); err != nil {
		t.Fatalf("record reconcile: %v", err)
	}
	if err := m.RecordPlan(coremetrics.PlanEvent{}); err != nil {
		t.Fatalf("record plan: %v", err)
	}
	if plain.calls != 1 {
		t.Fatalf("plan not forwarded")
	}
}
