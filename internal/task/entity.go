package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of due dates.
const DateLayout = "2006-01-02"

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Status      Status    `json:"status" yaml:"status"`
	DueDate     string    `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Assignee    string    `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Due parses DueDate. ok is false when the task has no due date.
func (t *Task) Due() (due time.Time, ok bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Validate checks the invariants a stored task must satisfy. Every violated
// field is reported; the result unwraps to one error per field.
func (t *Task) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, fmt.Errorf("title is required"))
	}
	if !t.Priority.Valid() {
		errs = append(errs, fmt.Errorf("invalid priority %q", t.Priority))
	}
	if !t.Status.Valid() {
		errs = append(errs, fmt.Errorf("invalid status %q", t.Status))
	}
	if t.DueDate != "" {
		if _, err := time.Parse(DateLayout, t.DueDate); err != nil {
			errs = append(errs, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", t.DueDate))
		}
	}
	return errors.Join(errs...)
}

// Filter selects tasks. Zero fields match everything; DueFrom and DueTo are
// inclusive and exclude tasks without a due date.
type Filter struct {
	Status   Status
	Priority Priority
	Assignee string
	DueFrom  *time.Time
	DueTo    *time.Time
}

func (f Filter) Match(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Assignee != "" && !strings.EqualFold(t.Assignee, f.Assignee) {
		return false
	}
	if f.DueFrom == nil && f.DueTo == nil {
		return true
	}
	due, ok := t.Due()
	if !ok {
		return false
	}
	if f.DueFrom != nil && due.Before(truncateDay(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && due.After(truncateDay(*f.DueTo)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
