package plan

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kereval/fieldops/core/geo"
	"github.com/kereval/fieldops/core/logger"
	"github.com/kereval/fieldops/core/model"
)

// GreedyPlanner assigns tasks in a single deterministic pass without
// backtracking. Tasks are processed by priority, then deadline, then id; for
// each task the highest-scoring eligible technician wins, with ties broken by
// lowest current load and then technician id. Provisional load increments
// inside the pass keep the greedy choice from piling every task onto one
// technician.
type GreedyPlanner struct {
	filter AvailabilityFilter
	scorer CandidateScorer
	cfg    Config
	log    logger.Logger

	// Now is overridable for deterministic tests.
	Now func() time.Time
}

type candidate struct {
	idx   int
	score float64
}

// NewGreedyPlanner creates a planner with the given configuration.
func NewGreedyPlanner(cfg Config, log logger.Logger) *GreedyPlanner {
	cfg.SetDefaults()
	return &GreedyPlanner{
		filter: AvailabilityFilter{},
		scorer: NewCandidateScorer(cfg),
		cfg:    cfg,
		log:    log,
		Now:    time.Now,
	}
}

// Plan computes an assignment plan over the snapshot. It never fails: tasks
// with no eligible technician are reported in UnassignedTaskIDs.
func (p *GreedyPlanner) Plan(snap model.Snapshot) Plan {
	now := p.Now()

	techs := make([]model.Technician, len(snap.Technicians))
	for i, t := range snap.Technicians {
		techs[i] = t.Clone()
	}

	tasks := pendingTasks(snap.Tasks)
	sortTasks(tasks)

	result := Plan{Scores: make(map[string]float64)}
	var travel []float64
	planned := make([][]Window, len(techs))

	for _, task := range tasks {
		window := Window{Start: now, End: now.Add(task.Duration())}
		best := p.pickBest(techs, task, window)
		if best == nil {
			result.UnassignedTaskIDs = append(result.UnassignedTaskIDs, task.ID)
			p.log.Infof("no technician found for task %s", task.ID)
			continue
		}

		tech := &techs[best.idx]
		dist := geo.DistanceKm(tech.Location, task.Location)
		scheduled := nextAvailableStart(*tech, planned[best.idx], now, task.Duration())
		a := model.Assignment{
			ID:                      uuid.NewString(),
			TaskID:                  task.ID,
			TechnicianID:            tech.ID,
			ScheduledTime:           scheduled,
			EstimatedArrivalMinutes: int(math.Round(dist * p.cfg.TravelMinutesPerKm)),
			Score:                   best.score,
			Rationale: fmt.Sprintf("score %.2f: rating %.1f, %.1f km away, %d tasks today",
				best.score, tech.RatingScore, dist, tech.TasksAssignedToday),
		}
		// Provisional bookkeeping so later tasks in this pass see the load
		// and the occupied window.
		tech.TasksAssignedToday++
		planned[best.idx] = append(planned[best.idx], Window{Start: scheduled, End: scheduled.Add(task.Duration())})

		result.Assignments = append(result.Assignments, a)
		result.Scores[task.ID] = best.score
		travel = append(travel, dist)
	}

	result.Summary = Summarize(techs, len(result.Assignments), len(result.UnassignedTaskIDs), travel)
	return result
}

// pickBest returns the winning candidate or nil when no technician is eligible.
func (p *GreedyPlanner) pickBest(techs []model.Technician, task model.Task, w Window) *candidate {
	var cands []candidate
	for i, t := range techs {
		if !p.filter.IsEligible(t, task, w) {
			continue
		}
		cands = append(cands, candidate{idx: i, score: p.scorer.Score(t, task)})
	}
	if len(cands) == 0 {
		return nil
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best, techs) {
			best = c
		}
	}
	return &best
}

// better prefers strictly higher score, then lower current load, then
// lexicographically smaller technician id for full determinism.
func better(a, b candidate, techs []model.Technician) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	la, lb := techs[a.idx].TasksAssignedToday, techs[b.idx].TasksAssignedToday
	if la != lb {
		return la < lb
	}
	return techs[a.idx].ID < techs[b.idx].ID
}

// nextAvailableStart pushes the start past blocked windows and past windows
// already planned for the technician earlier in this pass, so a technician
// holding several assignments gets them back to back instead of stacked on
// the same instant.
func nextAvailableStart(t model.Technician, planned []Window, from time.Time, dur time.Duration) time.Time {
	start := from
	for changed := true; changed; {
		changed = false
		for _, b := range t.BlockedTimeWindows {
			if start.Before(b.End) && b.Start.Before(start.Add(dur)) {
				start = b.End
				changed = true
			}
		}
		for _, w := range planned {
			if start.Before(w.End) && w.Start.Before(start.Add(dur)) {
				start = w.End
				changed = true
			}
		}
	}
	return start
}

// pendingTasks keeps plannable tasks only. A zero-valued status counts as
// pending; assigned and cancelled tasks are never replanned.
func pendingTasks(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, k := range tasks {
		if k.Status == model.TaskPending || k.Status == "" {
			out = append(out, k.Clone())
		}
	}
	return out
}

func sortTasks(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		if !tasks[i].Deadline.Equal(tasks[j].Deadline) {
			return tasks[i].Deadline.Before(tasks[j].Deadline)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
