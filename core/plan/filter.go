package plan

import "github.com/kereval/fieldops/core/model"

// AvailabilityFilter implements the hard eligibility rules: the technician is
// on duty, under capacity, carries every required skill and has no blocked
// window overlapping the proposed one.
type AvailabilityFilter struct{}

// IsEligible reports whether all rules hold. It never errors; callers that
// need to know why a technician was excluded should use Explain.
func (f AvailabilityFilter) IsEligible(t model.Technician, task model.Task, w Window) bool {
	return len(f.Explain(t, task, w)) == 0
}

// Explain returns one reason per failed rule, in rule order. An empty slice
// means the technician is eligible.
func (f AvailabilityFilter) Explain(t model.Technician, task model.Task, w Window) []Reason {
	var reasons []Reason
	if !t.Available {
		reasons = append(reasons, ReasonUnavailable)
	}
	if t.TasksAssignedToday >= t.MaxTasksPerDay {
		reasons = append(reasons, ReasonAtCapacity)
	}
	if !t.HasSkills(task.RequiredSkills) {
		reasons = append(reasons, ReasonMissingSkills)
	}
	for _, b := range t.BlockedTimeWindows {
		if w.Overlaps(b.Start, b.End) {
			reasons = append(reasons, ReasonTimeConflict)
			break
		}
	}
	return reasons
}
