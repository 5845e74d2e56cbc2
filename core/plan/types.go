package plan

import (
	"time"

	"github.com/kereval/fieldops/core/model"
)

// Window is a half-open [Start, End) time interval proposed for a task.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (w Window) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && start.Before(w.End)
}

// Reason identifies which eligibility rule a technician failed for a task.
type Reason int

const (
	ReasonUnavailable Reason = iota
	ReasonAtCapacity
	ReasonMissingSkills
	ReasonTimeConflict
)

// String returns a stable identifier suitable for diagnostics and audit.
func (r Reason) String() string {
	switch r {
	case ReasonUnavailable:
		return "technician_unavailable"
	case ReasonAtCapacity:
		return "at_capacity"
	case ReasonMissingSkills:
		return "missing_skills"
	case ReasonTimeConflict:
		return "time_conflict"
	default:
		return "unknown"
	}
}

// Plan is the outcome of one planning pass. Tasks without an eligible
// technician appear in UnassignedTaskIDs; that is a normal outcome, not an
// error.
type Plan struct {
	Assignments       []model.Assignment `json:"assignments"`
	UnassignedTaskIDs []string           `json:"unassignedTaskIds"`
	// Scores holds the winning score per assigned task id.
	Scores  map[string]float64 `json:"scores,omitempty"`
	Summary Summary            `json:"summary"`
}

// Planner produces an assignment plan from a roster/task snapshot.
type Planner interface {
	Plan(snap model.Snapshot) Plan
}

// Filter decides technician eligibility for a task window.
type Filter interface {
	IsEligible(t model.Technician, task model.Task, w Window) bool
	Explain(t model.Technician, task model.Task, w Window) []Reason
}

// Scorer computes a fitness score for an eligible (technician, task) pair.
type Scorer interface {
	Score(t model.Technician, task model.Task) float64
}
