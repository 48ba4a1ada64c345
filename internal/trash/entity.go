package trash

import (
	"time"

	"github.com/kazz187/teamboard/internal/task"
)

// Entry is a soft-deleted task. It owns a snapshot of the task's fields taken
// at removal time; the live task no longer exists once the entry does.
type Entry struct {
	ID                string        `json:"id" yaml:"id"`
	TaskID            string        `json:"task_id" yaml:"task_id"`
	Title             string        `json:"title" yaml:"title"`
	Description       string        `json:"description,omitempty" yaml:"description,omitempty"`
	Priority          task.Priority `json:"priority" yaml:"priority"`
	Status            task.Status   `json:"status" yaml:"status"`
	DueDate           string        `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Assignee          string        `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	RemovedAt         time.Time     `json:"removed_at" yaml:"removed_at"`
	ExpiresAt         time.Time     `json:"expires_at" yaml:"expires_at"`
	OriginalCreatedAt time.Time     `json:"original_created_at" yaml:"original_created_at"`
	OriginalUpdatedAt time.Time     `json:"original_updated_at" yaml:"original_updated_at"`
}

// NewEntry snapshots t. ExpiresAt is fixed here and never changes afterwards.
func NewEntry(id string, t *task.Task, removedAt time.Time) *Entry {
	return &Entry{
		ID:                id,
		TaskID:            t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          t.Priority,
		Status:            t.Status,
		DueDate:           t.DueDate,
		Assignee:          t.Assignee,
		RemovedAt:         removedAt,
		ExpiresAt:         removedAt.Add(RetentionWindow),
		OriginalCreatedAt: t.CreatedAt,
		OriginalUpdatedAt: t.UpdatedAt,
	}
}

// Task rebuilds the live task from the snapshot with the original id and
// creation time; UpdatedAt is set to restoredAt.
func (e *Entry) Task(restoredAt time.Time) *task.Task {
	return &task.Task{
		ID:          e.TaskID,
		Title:       e.Title,
		Description: e.Description,
		Priority:    e.Priority,
		Status:      e.Status,
		DueDate:     e.DueDate,
		Assignee:    e.Assignee,
		CreatedAt:   e.OriginalCreatedAt,
		UpdatedAt:   restoredAt,
	}
}
