package plan

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kereval/fieldops/core/model"
)

// Summary carries per-plan workload balance figures for display.
type Summary struct {
	AssignedCount   int     `json:"assignedCount"`
	UnassignedCount int     `json:"unassignedCount"`
	MeanLoad        float64 `json:"meanLoad"`
	LoadStdDev      float64 `json:"loadStdDev"`
	TotalTravelKm   float64 `json:"totalTravelKm"`
}

// Summarize computes load statistics over the post-pass technician loads and
// the total planned travel distance.
func Summarize(techs []model.Technician, assigned, unassigned int, travelKm []float64) Summary {
	s := Summary{AssignedCount: assigned, UnassignedCount: unassigned}
	if len(travelKm) > 0 {
		s.TotalTravelKm = floats.Sum(travelKm)
	}
	if len(techs) == 0 {
		return s
	}
	loads := make([]float64, len(techs))
	for i, t := range techs {
		loads[i] = float64(t.TasksAssignedToday)
	}
	s.MeanLoad = stat.Mean(loads, nil)
	if len(loads) > 1 {
		s.LoadStdDev = stat.StdDev(loads, nil)
	}
	return s
}
