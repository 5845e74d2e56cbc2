package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kereval/fieldops/core/logger"
	coremetrics "github.com/kereval/fieldops/core/metrics"
	"github.com/kereval/fieldops/core/model"
	"github.com/kereval/fieldops/core/plan"
	"github.com/kereval/fieldops/internal/eventbus"
)

// ScheduleStore owns all mutable scheduling state: the roster, the task
// queue, committed assignments and the audit trail. Planning components only
// ever see read-only snapshots; the store applies validated mutations.
type ScheduleStore struct {
	mu          sync.RWMutex
	technicians map[string]*model.Technician
	tasks       map[string]*model.Task
	assignments map[string]model.Assignment // keyed by task id
	audit       []AuditRecord

	// techLocks serializes commits per technician so concurrent commits
	// cannot push one technician over capacity. Commits for different
	// technicians contend only on the short state critical section.
	techLocks sync.Map

	filter  plan.AvailabilityFilter
	bus     *eventbus.Bus[AssignmentCommitted]
	log     logger.Logger
	metrics coremetrics.MetricsSink
	now     func() time.Time
}

// New creates an empty store. A nil sink disables metrics.
func New(bus *eventbus.Bus[AssignmentCommitted], log logger.Logger, sink coremetrics.MetricsSink) *ScheduleStore {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &ScheduleStore{
		technicians: make(map[string]*model.Technician),
		tasks:       make(map[string]*model.Task),
		assignments: make(map[string]model.Assignment),
		bus:         bus,
		log:         log,
		metrics:     sink,
		now:         time.Now,
	}
}

// SetSnapshot replaces roster and task state from the external sources.
// Existing assignments are kept; they re-validate at commit time anyway.
func (s *ScheduleStore) SetSnapshot(snap model.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.technicians = make(map[string]*model.Technician, len(snap.Technicians))
	for _, t := range snap.Technicians {
		cp := t.Clone()
		s.technicians[t.ID] = &cp
	}
	s.tasks = make(map[string]*model.Task, len(snap.Tasks))
	for _, k := range snap.Tasks {
		cp := k.Clone()
		if cp.Status == "" {
			cp.Status = model.TaskPending
		}
		s.tasks[k.ID] = &cp
	}
	return nil
}

// Snapshot returns a deep copy of the current roster and task queue.
func (s *ScheduleStore) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := model.Snapshot{}
	for _, t := range s.technicians {
		snap.Technicians = append(snap.Technicians, t.Clone())
	}
	for _, k := range s.tasks {
		snap.Tasks = append(snap.Tasks, k.Clone())
	}
	sort.Slice(snap.Technicians, func(i, j int) bool { return snap.Technicians[i].ID < snap.Technicians[j].ID })
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })
	return snap
}

// Commit applies a single assignment after re-validating it against current
// state. Planning and committing are separate steps; a technician may have
// gone on leave or filled up in between, so every rule is re-checked here.
// A rejected commit leaves the task pending for the next planning pass.
func (s *ScheduleStore) Commit(a model.Assignment) CommitResult {
	lock := s.lockFor(a.TechnicianID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	res := s.commitLocked(&a)
	s.mu.Unlock()

	if res.Status == StatusApplied {
		s.log.Infof("assignment %s committed: task %s -> technician %s", a.ID, a.TaskID, a.TechnicianID)
		if s.bus != nil {
			s.bus.Publish(AssignmentCommitted{Assignment: a, Time: s.now()})
		}
	} else {
		s.log.Warnf("assignment for task %s rejected: %s", a.TaskID, res.Reason)
	}
	if err := s.metrics.RecordCommit(coremetrics.CommitEvent{
		TaskID:       a.TaskID,
		TechnicianID: a.TechnicianID,
		Applied:      res.Status == StatusApplied,
		Reason:       string(res.Reason),
		Time:         s.now(),
	}); err != nil {
		s.log.Errorf("metrics error: %v", err)
	}
	return res
}

func (s *ScheduleStore) commitLocked(a *model.Assignment) CommitResult {
	task, ok := s.tasks[a.TaskID]
	if !ok {
		return rejected(ReasonTaskNotFound)
	}
	if task.Status != model.TaskPending {
		return rejected(ReasonTaskNotPending)
	}
	if _, exists := s.assignments[a.TaskID]; exists {
		return rejected(ReasonDuplicateAssignment)
	}
	tech, ok := s.technicians[a.TechnicianID]
	if !ok {
		return rejected(ReasonTechnicianNotFound)
	}
	window := plan.Window{Start: a.ScheduledTime, End: a.ScheduledTime.Add(task.Duration())}
	if reasons := s.filter.Explain(*tech, *task, window); len(reasons) > 0 {
		return rejected(RejectedReason(reasons[0].String()))
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	task.Status = model.TaskAssigned
	tech.TasksAssignedToday++
	tech.BlockedTimeWindows = append(tech.BlockedTimeWindows, model.BlockedTimeWindow{
		Start:  window.Start,
		End:    window.End,
		Reason: "task " + task.ID,
	})
	s.assignments[a.TaskID] = *a
	s.audit = append(s.audit, AuditRecord{
		ID:         uuid.NewString(),
		Assignment: *a,
		Rationale:  a.Rationale,
		Time:       s.now(),
	})
	return CommitResult{Status: StatusApplied}
}

func (s *ScheduleStore) lockFor(technicianID string) *sync.Mutex {
	v, _ := s.techLocks.LoadOrStore(technicianID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// AddTask queues a new pending task.
func (s *ScheduleStore) AddTask(k model.Task) error {
	if err := (model.Snapshot{Tasks: []model.Task{k}}).Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[k.ID]; exists {
		return fmt.Errorf("task %s already exists", k.ID)
	}
	cp := k.Clone()
	if cp.Status == "" {
		cp.Status = model.TaskPending
	}
	s.tasks[k.ID] = &cp
	return nil
}

// CancelTask excludes a task from planning permanently.
func (s *ScheduleStore) CancelTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	task.Status = model.TaskCancelled
	delete(s.assignments, id)
	return nil
}

// UpsertTechnician creates or replaces a roster entry. Deactivation is done
// by setting Available to false; technicians are never deleted.
func (s *ScheduleStore) UpsertTechnician(t model.Technician) error {
	if err := (model.Snapshot{Technicians: []model.Technician{t}}).Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := t.Clone()
	s.technicians[t.ID] = &cp
	return nil
}

// AddBlockedWindow books time off for a technician, rejecting windows that
// overlap an existing one.
func (s *ScheduleStore) AddBlockedWindow(technicianID string, w model.BlockedTimeWindow) error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("blocked window is empty or inverted")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tech, ok := s.technicians[technicianID]
	if !ok {
		return fmt.Errorf("technician %s not found", technicianID)
	}
	for _, b := range tech.BlockedTimeWindows {
		if w.Start.Before(b.End) && b.Start.Before(w.End) {
			return fmt.Errorf("window overlaps existing blocked time")
		}
	}
	tech.BlockedTimeWindows = append(tech.BlockedTimeWindows, w)
	return nil
}

// Assignments lists committed assignments ordered by task id.
func (s *ScheduleStore) Assignments() []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// Audit returns a copy of the audit trail in commit order.
func (s *ScheduleStore) Audit() []AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditRecord(nil), s.audit...)
}
