package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority orders tasks for planning. Higher values are planned first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// String returns the wire representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParsePriority converts a wire string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return PriorityLow, fmt.Errorf("unknown priority %q", s)
	}
}

// MarshalJSON encodes the priority as its wire string.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes the wire string form.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// TaskStatus tracks the task lifecycle.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskAssigned  TaskStatus = "assigned"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is a unit of field work waiting for a technician.
type Task struct {
	ID                     string     `json:"id" validate:"required"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Location               Coordinate `json:"location"`
	RequiredSkills         []string   `json:"requiredSkills" validate:"required,min=1"`
	Priority               Priority   `json:"priority"`
	EstimatedDurationHours float64    `json:"estimatedDurationHours" validate:"gt=0"`
	Deadline               time.Time  `json:"deadline"`
	Status                 TaskStatus `json:"status"`
}

// Duration returns the estimated duration as a time.Duration.
func (t Task) Duration() time.Duration {
	return time.Duration(t.EstimatedDurationHours * float64(time.Hour))
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	cp := t
	cp.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	return cp
}
