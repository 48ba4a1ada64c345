package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Validate(t *testing.T) {
	valid := Task{ID: "t1", Title: "Draft report", Priority: PriorityHigh, Status: StatusPending, DueDate: "2026-02-01"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"blank title", func(t *Task) { t.Title = "  " }},
		{"unknown priority", func(t *Task) { t.Priority = "urgent" }},
		{"unknown status", func(t *Task) { t.Status = "done" }},
		{"bad due date", func(t *Task) { t.DueDate = "01/02/2026" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := valid
			tt.mutate(&tk)
			assert.Error(t, tk.Validate())
		})
	}
}

func TestFilter_Match(t *testing.T) {
	tk := &Task{Title: "a", Priority: PriorityLow, Status: StatusInProgress, Assignee: "Ana", DueDate: "2026-02-10"}
	noDue := &Task{Title: "b", Priority: PriorityLow, Status: StatusInProgress}
	day := func(s string) *time.Time {
		d, err := time.Parse(DateLayout, s)
		require.NoError(t, err)
		d = d.Add(15 * time.Hour)
		return &d
	}

	assert.True(t, Filter{}.Match(tk))
	assert.True(t, Filter{}.Match(noDue))
	assert.True(t, Filter{Status: StatusInProgress, Priority: PriorityLow, Assignee: "ana"}.Match(tk))
	assert.False(t, Filter{Status: StatusCompleted}.Match(tk))
	assert.False(t, Filter{Priority: PriorityHigh}.Match(tk))
	assert.False(t, Filter{Assignee: "ben"}.Match(tk))

	assert.True(t, Filter{DueFrom: day("2026-02-10"), DueTo: day("2026-02-10")}.Match(tk))
	assert.True(t, Filter{DueFrom: day("2026-02-01")}.Match(tk))
	assert.False(t, Filter{DueFrom: day("2026-02-11")}.Match(tk))
	assert.False(t, Filter{DueTo: day("2026-02-09")}.Match(tk))
	assert.False(t, Filter{DueFrom: day("2026-02-01")}.Match(noDue))
}

func TestCalendar(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "b low", Priority: PriorityLow, DueDate: "2026-02-02"},
		{ID: "2", Title: "a high", Priority: PriorityHigh, DueDate: "2026-02-02"},
		{ID: "3", Title: "c medium", Priority: PriorityMedium, DueDate: "2026-02-02"},
		{ID: "4", Title: "outside", Priority: PriorityHigh, DueDate: "2026-03-01"},
		{ID: "5", Title: "undated", Priority: PriorityHigh},
		{ID: "6", Title: "first day", Priority: PriorityLow, DueDate: "2026-02-01"},
	}
	from := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	days, err := Calendar(tasks, from, to)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-02-01", days[0].Date)
	assert.Len(t, days[0].Tasks, 1)
	assert.Equal(t, "2026-02-03", days[2].Date)
	assert.Empty(t, days[2].Tasks)

	var titles []string
	for _, tk := range days[1].Tasks {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"a high", "c medium", "b low"}, titles)
}

func TestCalendar_InvalidRange(t *testing.T) {
	from := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, err := Calendar(nil, from, from.AddDate(0, 0, -1))
	assert.Error(t, err)

	_, err = Calendar(nil, from, from.AddDate(0, 0, MaxCalendarDays))
	assert.Error(t, err)

	days, err := Calendar(nil, from, from.AddDate(0, 0, MaxCalendarDays-1))
	require.NoError(t, err)
	assert.Len(t, days, MaxCalendarDays)
}
