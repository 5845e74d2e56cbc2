package model

import (
	"fmt"
	"time"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// BlockedTimeWindow is a period during which a technician cannot take work.
// Windows are half-open: a window blocks [Start, End).
type BlockedTimeWindow struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// Technician represents a field worker that can be assigned tasks.
// Records originate from the external roster source; the engine only ever
// increments TasksAssignedToday and appends blocked windows on commit.
type Technician struct {
	ID                 string              `json:"id" validate:"required"`
	Name               string              `json:"name"`
	Specialty          string              `json:"specialty"`
	Skills             []string            `json:"skills" validate:"required,min=1"`
	RatingScore        float64             `json:"ratingScore" validate:"gte=0,lte=5"`
	Location           Coordinate          `json:"location"`
	TasksAssignedToday int                 `json:"tasksAssignedToday" validate:"gte=0"`
	MaxTasksPerDay     int                 `json:"maxTasksPerDay" validate:"gte=0"`
	Available          bool                `json:"available"`
	BlockedTimeWindows []BlockedTimeWindow `json:"blockedTimeWindows"`
}

// HasSkills reports whether every required skill tag is present.
func (t Technician) HasSkills(required []string) bool {
	for _, s := range required {
		found := false
		for _, have := range t.Skills {
			if have == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Validate checks invariants that go beyond struct tags.
func (t Technician) Validate() error {
	if t.TasksAssignedToday > t.MaxTasksPerDay {
		return fmt.Errorf("technician %s: assigned count %d exceeds capacity %d", t.ID, t.TasksAssignedToday, t.MaxTasksPerDay)
	}
	for i, w := range t.BlockedTimeWindows {
		if !w.End.After(w.Start) {
			return fmt.Errorf("technician %s: blocked window %d is empty or inverted", t.ID, i)
		}
		for _, other := range t.BlockedTimeWindows[i+1:] {
			if w.Start.Before(other.End) && other.Start.Before(w.End) {
				return fmt.Errorf("technician %s: overlapping blocked windows", t.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy, so planning passes can mutate provisional state
// without touching the caller's snapshot.
func (t Technician) Clone() Technician {
	cp := t
	cp.Skills = append([]string(nil), t.Skills...)
	cp.BlockedTimeWindows = append([]BlockedTimeWindow(nil), t.BlockedTimeWindows...)
	return cp
}
