package plan

import (
	"github.com/kereval/fieldops/core/geo"
	"github.com/kereval/fieldops/core/model"
)

// CandidateScorer computes the fitness of a (technician, task) pair that has
// already passed the availability filter. With the default weights:
//
//	score = rating*10 - distanceKm*2 - tasksAssignedToday*5
//
// Higher is better. Rating dominates moderate distance differences, distance
// biases toward nearby technicians, and current load spreads work away from
// already-busy technicians. Priority is deliberately absent: it orders tasks
// in the planner, it does not pick technicians.
type CandidateScorer struct {
	cfg Config
}

// NewCandidateScorer builds a scorer; zero-valued weights fall back to the
// reference 10/2/5 triple.
func NewCandidateScorer(cfg Config) CandidateScorer {
	cfg.SetDefaults()
	return CandidateScorer{cfg: cfg}
}

// Score is undefined for ineligible pairs; the caller must filter first.
func (s CandidateScorer) Score(t model.Technician, task model.Task) float64 {
	dist := geo.DistanceKm(t.Location, task.Location)
	return t.RatingScore*s.cfg.RatingWeight -
		dist*s.cfg.DistanceWeightPerKm -
		float64(t.TasksAssignedToday)*s.cfg.LoadWeightPerTask
}
