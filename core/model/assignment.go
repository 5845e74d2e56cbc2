package model

import "time"

// Assignment pairs a task with a technician for a scheduled window.
// At most one active assignment may exist per task.
type Assignment struct {
	ID                      string    `json:"id"`
	TaskID                  string    `json:"taskId"`
	TechnicianID            string    `json:"technicianId"`
	ScheduledTime           time.Time `json:"scheduledTime"`
	EstimatedArrivalMinutes int       `json:"estimatedArrival"`
	Score                   float64   `json:"score"`
	Rationale               string    `json:"rationale"`
}
