package plan

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kereval/fieldops/core/model"
	coreplan "github.com/kereval/fieldops/core/plan"
	"github.com/kereval/fieldops/core/store"
	"github.com/kereval/fieldops/infra/logger"
)

var handlerNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func handlerSnapshot() model.Snapshot {
	return model.Snapshot{
		Technicians: []model.Technician{{
			ID:             "t1",
			Skills:         []string{"hvac"},
			RatingScore:    4.8,
			MaxTasksPerDay: 5,
			Available:      true,
		}},
		Tasks: []model.Task{{
			ID:                     "k1",
			RequiredSkills:         []string{"hvac"},
			Priority:               model.PriorityHigh,
			EstimatedDurationHours: 2,
			Deadline:               handlerNow.Add(8 * time.Hour),
			Status:                 model.TaskPending,
		}},
	}
}

func handlerPlanner() *coreplan.GreedyPlanner {
	p := coreplan.NewGreedyPlanner(coreplan.Config{}, logger.NopLogger{})
	p.Now = func() time.Time { return handlerNow }
	return p
}

func TestPlanHandler_BodySnapshot(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	h := NewPlanHandler(st, handlerPlanner(), nil, logger.NopLogger{})

	body, err := json.Marshal(handlerSnapshot())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "t1", resp.Assignments[0].TechnicianID)
	assert.Empty(t, resp.UnassignedTaskIDs)
	assert.Nil(t, resp.SuggestionOutcomes)
}

func TestPlanHandler_EmptyBodyUsesStore(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	require.NoError(t, st.SetSnapshot(handlerSnapshot()))
	h := NewPlanHandler(st, handlerPlanner(), nil, logger.NopLogger{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "k1", resp.Assignments[0].TaskID)
}

func TestPlanHandler_InvalidSnapshot(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	h := NewPlanHandler(st, handlerPlanner(), nil, logger.NopLogger{})

	snap := handlerSnapshot()
	snap.Technicians[0].Skills = nil
	body, err := json.Marshal(snap)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandler_MalformedJSON(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	h := NewPlanHandler(st, handlerPlanner(), nil, logger.NopLogger{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanHandler_MethodNotAllowed(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	h := NewPlanHandler(st, handlerPlanner(), nil, logger.NopLogger{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCommitHandler_Applies(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	require.NoError(t, st.SetSnapshot(handlerSnapshot()))
	h := NewCommitHandler(st, logger.NopLogger{})

	a := model.Assignment{TaskID: "k1", TechnicianID: "t1", ScheduledTime: handlerNow}
	body, err := json.Marshal(a)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/commit", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res store.CommitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, store.StatusApplied, res.Status)
	assert.Len(t, st.Assignments(), 1)
}

func TestCommitHandler_RejectedIsConflict(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	require.NoError(t, st.SetSnapshot(handlerSnapshot()))
	h := NewCommitHandler(st, logger.NopLogger{})

	a := model.Assignment{TaskID: "k-ghost", TechnicianID: "t1", ScheduledTime: handlerNow}
	body, err := json.Marshal(a)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/commit", bytes.NewReader(body)))

	require.Equal(t, http.StatusConflict, rec.Code)
	var res store.CommitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, store.StatusRejected, res.Status)
	assert.Equal(t, store.ReasonTaskNotFound, res.Reason)
}

func TestScheduleHandler(t *testing.T) {
	st := store.New(nil, logger.NopLogger{}, nil)
	require.NoError(t, st.SetSnapshot(handlerSnapshot()))
	res := st.Commit(model.Assignment{TaskID: "k1", TechnicianID: "t1", ScheduledTime: handlerNow, Rationale: "manual"})
	require.Equal(t, store.StatusApplied, res.Status)

	h := NewScheduleHandler(st, logger.NopLogger{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Technicians, 1)
	assert.Len(t, resp.Tasks, 1)
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "k1", resp.Assignments[0].TaskID)
	require.Len(t, resp.Audit, 1)
	assert.Equal(t, "manual", resp.Audit[0].Rationale)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/schedule", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
