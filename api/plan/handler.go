package plan

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	corelogger "github.com/kereval/fieldops/core/logger"
	"github.com/kereval/fieldops/core/model"
	"github.com/kereval/fieldops/core/optimizer"
	coreplan "github.com/kereval/fieldops/core/plan"
	"github.com/kereval/fieldops/core/store"
)

// PlanResponse is the plan plus the reconciliation decisions, for the UI to
// render and a human to confirm before commit.
type PlanResponse struct {
	coreplan.Plan
	SuggestionOutcomes []optimizer.SuggestionOutcome `json:"suggestionOutcomes,omitempty"`
}

// NewPlanHandler returns an HTTP handler computing a plan via POST /api/plan.
// A snapshot in the request body overrides the store state; an empty body
// plans over the current schedule. The gateway may be nil to skip the
// external optimizer.
func NewPlanHandler(st *store.ScheduleStore, planner coreplan.Planner, gw *optimizer.Gateway, log corelogger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap, err := readSnapshot(r.Body, st)
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		local := planner.Plan(snap)
		resp := PlanResponse{Plan: local}
		if gw != nil {
			resp.Plan, resp.SuggestionOutcomes = gw.Reconcile(r.Context(), snap, local)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Errorf("encode plan: %v", err)
		}
	})
}

func readSnapshot(body io.Reader, st *store.ScheduleStore) (model.Snapshot, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(data) == 0 {
		return st.Snapshot(), nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// NewCommitHandler returns an HTTP handler applying one assignment via
// POST /api/commit. A rejected commit answers 409 with the reason; the task
// stays pending for replanning.
func NewCommitHandler(st *store.ScheduleStore, log corelogger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var a model.Assignment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res := st.Commit(a)
		w.Header().Set("Content-Type", "application/json")
		if res.Status == store.StatusRejected {
			w.WriteHeader(http.StatusConflict)
		}
		if err := json.NewEncoder(w).Encode(res); err != nil {
			log.Errorf("encode commit result: %v", err)
		}
	})
}

type scheduleResponse struct {
	Technicians []model.Technician  `json:"technicians"`
	Tasks       []model.Task        `json:"tasks"`
	Assignments []model.Assignment  `json:"assignments"`
	Audit       []store.AuditRecord `json:"audit"`
}

// NewScheduleHandler exposes the current schedule state via GET /api/schedule.
func NewScheduleHandler(st *store.ScheduleStore, log corelogger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := st.Snapshot()
		resp := scheduleResponse{
			Technicians: snap.Technicians,
			Tasks:       snap.Tasks,
			Assignments: st.Assignments(),
			Audit:       st.Audit(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Errorf("encode schedule: %v", err)
		}
	})
}
