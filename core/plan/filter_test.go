package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kereval/fieldops/core/model"
)

var filterNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func filterTech() model.Technician {
	return model.Technician{
		ID:             "t1",
		Skills:         []string{"hvac", "electrical"},
		Available:      true,
		MaxTasksPerDay: 5,
	}
}

func filterTask() model.Task {
	return model.Task{
		ID:                     "k1",
		RequiredSkills:         []string{"hvac"},
		EstimatedDurationHours: 2,
		Status:                 model.TaskPending,
	}
}

func TestAvailabilityFilter_Eligible(t *testing.T) {
	f := AvailabilityFilter{}
	w := Window{Start: filterNow, End: filterNow.Add(2 * time.Hour)}
	assert.True(t, f.IsEligible(filterTech(), filterTask(), w))
	assert.Empty(t, f.Explain(filterTech(), filterTask(), w))
}

func TestAvailabilityFilter_Rules(t *testing.T) {
	w := Window{Start: filterNow, End: filterNow.Add(2 * time.Hour)}
	cases := []struct {
		name   string
		mutate func(*model.Technician)
		want   Reason
	}{
		{"on leave", func(m *model.Technician) { m.Available = false }, ReasonUnavailable},
		{"at capacity", func(m *model.Technician) { m.TasksAssignedToday = 5 }, ReasonAtCapacity},
		{"missing skill", func(m *model.Technician) { m.Skills = []string{"plumbing"} }, ReasonMissingSkills},
		{"blocked window overlap", func(m *model.Technician) {
			m.BlockedTimeWindows = []model.BlockedTimeWindow{
				{Start: filterNow.Add(time.Hour), End: filterNow.Add(3 * time.Hour), Reason: "lunch"},
			}
		}, ReasonTimeConflict},
	}
	f := AvailabilityFilter{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tech := filterTech()
			tc.mutate(&tech)
			assert.False(t, f.IsEligible(tech, filterTask(), w))
			reasons := f.Explain(tech, filterTask(), w)
			assert.Contains(t, reasons, tc.want)
		})
	}
}

// A blocked window fully covering the proposed window always disqualifies,
// regardless of how well the technician would score.
func TestAvailabilityFilter_FullDayBlock(t *testing.T) {
	tech := filterTech()
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tech.BlockedTimeWindows = []model.BlockedTimeWindow{
		{Start: day, End: day.Add(8 * time.Hour), Reason: "training"},
	}
	w := Window{Start: filterNow, End: filterNow.Add(2 * time.Hour)}
	assert.False(t, AvailabilityFilter{}.IsEligible(tech, filterTask(), w))
}

// Half-open semantics: a window starting exactly when the block ends is fine.
func TestAvailabilityFilter_AdjacentWindows(t *testing.T) {
	tech := filterTech()
	tech.BlockedTimeWindows = []model.BlockedTimeWindow{
		{Start: filterNow.Add(-2 * time.Hour), End: filterNow, Reason: "standup"},
	}
	w := Window{Start: filterNow, End: filterNow.Add(2 * time.Hour)}
	assert.True(t, AvailabilityFilter{}.IsEligible(tech, filterTask(), w))
}

func TestAvailabilityFilter_MultipleReasons(t *testing.T) {
	tech := filterTech()
	tech.Available = false
	tech.Skills = []string{"plumbing"}
	w := Window{Start: filterNow, End: filterNow.Add(time.Hour)}
	reasons := AvailabilityFilter{}.Explain(tech, filterTask(), w)
	assert.Equal(t, []Reason{ReasonUnavailable, ReasonMissingSkills}, reasons)
}
