package store

import (
	"time"

	"github.com/kereval/fieldops/core/model"
)

// CommitStatus is the outcome of a commit attempt.
type CommitStatus string

const (
	StatusApplied  CommitStatus = "applied"
	StatusRejected CommitStatus = "rejected"
)

// RejectedReason explains why a commit was refused. Reasons for eligibility
// failures use the same identifiers as the planner's reason codes.
type RejectedReason string

const (
	ReasonTaskNotFound        RejectedReason = "task_not_found"
	ReasonTaskNotPending      RejectedReason = "task_not_pending"
	ReasonDuplicateAssignment RejectedReason = "duplicate_assignment"
	ReasonTechnicianNotFound  RejectedReason = "technician_not_found"
)

// CommitResult is the wire-visible outcome of Commit.
type CommitResult struct {
	Status CommitStatus   `json:"status"`
	Reason RejectedReason `json:"reason,omitempty"`
}

func rejected(r RejectedReason) CommitResult {
	return CommitResult{Status: StatusRejected, Reason: r}
}

// AssignmentCommitted is published on the event bus after a successful commit.
type AssignmentCommitted struct {
	Assignment model.Assignment
	Time       time.Time
}

// AuditRecord is an append-only trace of a committed assignment.
type AuditRecord struct {
	ID         string           `json:"id"`
	Assignment model.Assignment `json:"assignment"`
	Rationale  string           `json:"rationale"`
	Time       time.Time        `json:"time"`
}
