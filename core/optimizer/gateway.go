package optimizer

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kereval/fieldops/core/geo"
	"github.com/kereval/fieldops/core/logger"
	coremetrics "github.com/kereval/fieldops/core/metrics"
	"github.com/kereval/fieldops/core/model"
	"github.com/kereval/fieldops/core/plan"
)

// Gateway reconciles external optimizer suggestions with the local greedy
// plan. The optimizer is advisory: a suggestion passing the same hard
// constraints as local planning replaces the local pairing for that task,
// anything else falls back to the local choice. If the optimizer is
// unreachable or returns garbage, the local plan is returned unchanged.
type Gateway struct {
	client  Client
	filter  plan.AvailabilityFilter
	cfg     plan.Config
	timeout time.Duration
	log     logger.Logger
	metrics coremetrics.MetricsSink

	// Now is overridable for deterministic tests.
	Now func() time.Time
}

// NewGateway creates a gateway around the given client. A nil client
// disables reconciliation entirely.
func NewGateway(client Client, cfg Config, planCfg plan.Config, log logger.Logger, sink coremetrics.MetricsSink) *Gateway {
	cfg.SetDefaults()
	planCfg.SetDefaults()
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Gateway{
		client:  client,
		cfg:     planCfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:     log,
		metrics: sink,
		Now:     time.Now,
	}
}

// Reconcile requests suggestions for the snapshot and merges them with the
// local plan. The gateway never commits state; the returned plan is for the
// caller to confirm and apply.
func (g *Gateway) Reconcile(ctx context.Context, snap model.Snapshot, local plan.Plan) (plan.Plan, []SuggestionOutcome) {
	if g.client == nil {
		return local, nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sugs, err := g.client.Suggest(ctx, snap)
	if err != nil {
		// Expected degradation, not a failure: the local plan stands.
		g.log.Warnf("optimizer unavailable, keeping local plan: %v", err)
		g.recordReconcile(coremetrics.ReconcileEvent{OptimizerReached: false, Time: g.Now()})
		return local, nil
	}

	techs := make(map[string]*model.Technician, len(snap.Technicians))
	for _, t := range snap.Technicians {
		cp := t.Clone()
		techs[t.ID] = &cp
	}
	tasks := make(map[string]model.Task, len(snap.Tasks))
	for _, k := range snap.Tasks {
		tasks[k.ID] = k
	}
	localByTask := make(map[string]model.Assignment, len(local.Assignments))
	for _, a := range local.Assignments {
		localByTask[a.TaskID] = a
	}

	// Seed loads and occupied windows with the local plan, so vetting checks
	// a suggestion against the schedule it has to fit into rather than the
	// bare snapshot.
	held := make(map[string][]heldWindow)
	for _, a := range local.Assignments {
		tech, ok := techs[a.TechnicianID]
		if !ok {
			continue
		}
		tech.TasksAssignedToday++
		if task, ok := tasks[a.TaskID]; ok {
			held[a.TechnicianID] = append(held[a.TechnicianID], heldWindow{
				taskID: a.TaskID,
				w:      plan.Window{Start: a.ScheduledTime, End: a.ScheduledTime.Add(task.Duration())},
			})
		}
	}

	accepted := make(map[string]model.Assignment)
	var outcomes []SuggestionOutcome
	for _, s := range sugs {
		outcome := g.vet(s, techs, tasks, accepted, localByTask, held)
		outcomes = append(outcomes, outcome)
		if !outcome.Accepted {
			if _, hasLocal := localByTask[s.TaskID]; hasLocal {
				g.log.Infof("suggestion for task %s rejected (%s), falling back to local plan", s.TaskID, outcome.Reason)
			} else {
				g.log.Infof("suggestion for task %s rejected (%s), task stays unassigned", s.TaskID, outcome.Reason)
			}
		}
	}

	final := g.merge(local, accepted, tasks, techs)
	ev := coremetrics.ReconcileEvent{OptimizerReached: true, Time: g.Now()}
	for _, o := range outcomes {
		if o.Accepted {
			ev.Accepted++
		} else {
			ev.Rejected++
			if _, hasLocal := localByTask[o.TaskID]; hasLocal {
				ev.Fallbacks++
			}
		}
	}
	g.recordReconcile(ev)
	return final, outcomes
}

// heldWindow is a time slot a technician already owes to an assignment in
// this reconciliation, local or accepted, keyed by task so a superseded local
// pairing can free its slot.
type heldWindow struct {
	taskID string
	w      plan.Window
}

// vet re-validates one suggestion against the same rules the planner used,
// on top of the load and windows the plan so far already claims.
func (g *Gateway) vet(s Suggestion, techs map[string]*model.Technician, tasks map[string]model.Task, accepted map[string]model.Assignment, localByTask map[string]model.Assignment, held map[string][]heldWindow) SuggestionOutcome {
	out := SuggestionOutcome{TaskID: s.TaskID, TechnicianID: s.TechnicianID}
	task, ok := tasks[s.TaskID]
	if !ok {
		out.Reason = "unknown_task"
		return out
	}
	if task.Status != model.TaskPending && task.Status != "" {
		out.Reason = "task_not_pending"
		return out
	}
	if _, dup := accepted[s.TaskID]; dup {
		out.Reason = "duplicate_suggestion"
		return out
	}
	tech, ok := techs[s.TechnicianID]
	if !ok {
		out.Reason = "unknown_technician"
		return out
	}

	// A suggestion supersedes the local pairing for its task, so that
	// pairing's load and window are freed while the suggestion is checked,
	// and restored if the suggestion is refused.
	restore := release(s.TaskID, techs, localByTask, held)

	start := s.ScheduledTime
	if start.IsZero() {
		start = g.Now()
	}
	window := plan.Window{Start: start, End: start.Add(task.Duration())}
	if reasons := g.filter.Explain(*tech, task, window); len(reasons) > 0 {
		restore()
		out.Reason = reasons[0].String()
		return out
	}
	for _, h := range held[s.TechnicianID] {
		if window.Overlaps(h.w.Start, h.w.End) {
			restore()
			out.Reason = plan.ReasonTimeConflict.String()
			return out
		}
	}

	dist := geo.DistanceKm(tech.Location, task.Location)
	arrival := s.EstimatedArrivalMinutes
	if arrival == 0 {
		arrival = int(math.Round(dist * g.cfg.TravelMinutesPerKm))
	}
	rationale := s.Rationale
	if rationale == "" {
		rationale = "accepted external optimizer suggestion"
	}
	accepted[s.TaskID] = model.Assignment{
		ID:                      uuid.NewString(),
		TaskID:                  s.TaskID,
		TechnicianID:            s.TechnicianID,
		ScheduledTime:           start,
		EstimatedArrivalMinutes: arrival,
		Rationale:               rationale,
	}
	tech.TasksAssignedToday++
	held[s.TechnicianID] = append(held[s.TechnicianID], heldWindow{taskID: s.TaskID, w: window})
	out.Accepted = true
	return out
}

// release frees the load and window of the local pairing for taskID, if one
// exists, and returns a func undoing the release.
func release(taskID string, techs map[string]*model.Technician, localByTask map[string]model.Assignment, held map[string][]heldWindow) func() {
	a, hasLocal := localByTask[taskID]
	if !hasLocal {
		return func() {}
	}
	tech, ok := techs[a.TechnicianID]
	if !ok {
		return func() {}
	}
	tech.TasksAssignedToday--
	var removed heldWindow
	ws := held[a.TechnicianID]
	for i, h := range ws {
		if h.taskID == taskID {
			removed = h
			held[a.TechnicianID] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	return func() {
		tech.TasksAssignedToday++
		if removed.taskID != "" {
			held[a.TechnicianID] = append(held[a.TechnicianID], removed)
		}
	}
}

// merge builds the final plan: accepted suggestions replace local pairings
// for their task, everything else keeps the local outcome.
func (g *Gateway) merge(local plan.Plan, accepted map[string]model.Assignment, tasks map[string]model.Task, techs map[string]*model.Technician) plan.Plan {
	final := plan.Plan{Scores: make(map[string]float64, len(local.Scores))}
	seen := make(map[string]bool, len(local.Assignments))

	for _, a := range local.Assignments {
		seen[a.TaskID] = true
		if repl, ok := accepted[a.TaskID]; ok {
			final.Assignments = append(final.Assignments, repl)
			continue
		}
		final.Assignments = append(final.Assignments, a)
		if sc, ok := local.Scores[a.TaskID]; ok {
			final.Scores[a.TaskID] = sc
		}
	}
	// Suggestions for tasks the local planner left unassigned.
	var extra []model.Assignment
	for id, a := range accepted {
		if !seen[id] {
			extra = append(extra, a)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].TaskID < extra[j].TaskID })
	final.Assignments = append(final.Assignments, extra...)

	assignedTasks := make(map[string]bool, len(final.Assignments))
	var travel []float64
	for _, a := range final.Assignments {
		assignedTasks[a.TaskID] = true
		if tech, ok := techs[a.TechnicianID]; ok {
			if task, ok := tasks[a.TaskID]; ok {
				travel = append(travel, geo.DistanceKm(tech.Location, task.Location))
			}
		}
	}
	for _, id := range local.UnassignedTaskIDs {
		if !assignedTasks[id] {
			final.UnassignedTaskIDs = append(final.UnassignedTaskIDs, id)
		}
	}

	roster := make([]model.Technician, 0, len(techs))
	for _, t := range techs {
		roster = append(roster, *t)
	}
	final.Summary = plan.Summarize(roster, len(final.Assignments), len(final.UnassignedTaskIDs), travel)
	return final
}

func (g *Gateway) recordReconcile(ev coremetrics.ReconcileEvent) {
	if rec, ok := g.metrics.(coremetrics.ReconcileRecorder); ok {
		if err := rec.RecordReconcile(ev); err != nil {
			g.log.Errorf("metrics error: %v", err)
		}
	}
}
