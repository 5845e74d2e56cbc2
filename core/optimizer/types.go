package optimizer

import (
	"context"
	"time"

	"github.com/kereval/fieldops/core/model"
)

// Suggestion is one proposed (task, technician) pairing from the external
// advisory optimizer. Suggestions are untrusted input; the gateway re-checks
// every hard constraint before accepting one.
type Suggestion struct {
	TaskID                  string    `json:"taskId"`
	TechnicianID            string    `json:"technicianId"`
	ScheduledTime           time.Time `json:"scheduledTime"`
	Rationale               string    `json:"rationale"`
	EstimatedArrivalMinutes int       `json:"estimatedArrival"`
}

// Client requests suggestions from the external optimizer.
type Client interface {
	Suggest(ctx context.Context, snap model.Snapshot) ([]Suggestion, error)
}

// SuggestionOutcome records the reconciliation decision for one suggestion.
type SuggestionOutcome struct {
	TaskID       string `json:"taskId"`
	TechnicianID string `json:"technicianId"`
	Accepted     bool   `json:"accepted"`
	Reason       string `json:"reason,omitempty"`
}

// Config defines gateway settings.
type Config struct {
	Enabled        bool   `json:"enabled"`
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}
