package model

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Snapshot is a read-only view of the roster and task queue handed to the
// planner. Planning never mutates a snapshot.
type Snapshot struct {
	Technicians []Technician `json:"technicians"`
	Tasks       []Task       `json:"tasks"`
}

// ValidationError marks input data the engine refuses to plan with. It is the
// only error class that aborts a planning call.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot: " + e.Detail
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// Validate rejects malformed snapshots before planning: out-of-range or NaN
// coordinates, empty skill sets, non-positive durations, duplicate ids and
// broken technician invariants.
func (s Snapshot) Validate() error {
	techIDs := make(map[string]struct{}, len(s.Technicians))
	for _, t := range s.Technicians {
		if err := validate.Struct(t); err != nil {
			return validationErrorf("technician %s: %v", t.ID, err)
		}
		if coordInvalid(t.Location) {
			return validationErrorf("technician %s: non-finite location", t.ID)
		}
		if err := t.Validate(); err != nil {
			return &ValidationError{Detail: err.Error()}
		}
		if _, dup := techIDs[t.ID]; dup {
			return validationErrorf("duplicate technician id %s", t.ID)
		}
		techIDs[t.ID] = struct{}{}
	}
	taskIDs := make(map[string]struct{}, len(s.Tasks))
	for _, k := range s.Tasks {
		if err := validate.Struct(k); err != nil {
			return validationErrorf("task %s: %v", k.ID, err)
		}
		if coordInvalid(k.Location) {
			return validationErrorf("task %s: non-finite location", k.ID)
		}
		if _, dup := taskIDs[k.ID]; dup {
			return validationErrorf("duplicate task id %s", k.ID)
		}
		taskIDs[k.ID] = struct{}{}
	}
	return nil
}

func coordInvalid(c Coordinate) bool {
	return math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0)
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := Snapshot{
		Technicians: make([]Technician, len(s.Technicians)),
		Tasks:       make([]Task, len(s.Tasks)),
	}
	for i, t := range s.Technicians {
		cp.Technicians[i] = t.Clone()
	}
	for i, k := range s.Tasks {
		cp.Tasks[i] = k.Clone()
	}
	return cp
}
