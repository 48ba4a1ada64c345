package tasklog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/internal/trash"
)

// Recorder appends history entries. Failures are logged and never fail the
// operation being recorded.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, taskID string, action Action, message, diff string, metadata map[string]string) *TaskLog {
	l := &TaskLog{
		ID:        ulid.Make().String(),
		TaskID:    taskID,
		Action:    action,
		Message:   message,
		Diff:      diff,
		Metadata:  metadata,
		CreatedAt: r.now().UTC(),
	}
	if err := r.repo.Create(ctx, l); err != nil {
		slog.ErrorContext(ctx, "failed to record task history", "task_id", taskID, "action", string(action), "error", err)
		return nil
	}
	return l
}

var _ lifecycle.Listener = (*Recorder)(nil)

func (r *Recorder) OnTransition(ctx context.Context, tr lifecycle.Transition, e *trash.Entry) {
	meta := map[string]string{"trash_id": e.ID}
	switch tr {
	case lifecycle.TransitionTrashed:
		r.Record(ctx, e.TaskID, ActionTrashed, fmt.Sprintf("%q moved to trash, expires %s", e.Title, e.ExpiresAt.Format(time.DateOnly)), "", meta)
	case lifecycle.TransitionRestored:
		r.Record(ctx, e.TaskID, ActionRestored, fmt.Sprintf("%q restored from trash", e.Title), "", meta)
	case lifecycle.TransitionPurged:
		r.Record(ctx, e.TaskID, ActionPurged, fmt.Sprintf("%q permanently deleted", e.Title), "", meta)
	}
}

var _ task.History = (*Recorder)(nil)

func (r *Recorder) TaskCreated(ctx context.Context, t *task.Task) {
	r.Record(ctx, t.ID, ActionCreated, fmt.Sprintf("%q created", t.Title), "", nil)
}

func (r *Recorder) TaskUpdated(ctx context.Context, before, after *task.Task) {
	diff, err := Diff(before, after)
	if err != nil {
		slog.WarnContext(ctx, "failed to diff task", "task_id", after.ID, "error", err)
	}
	var meta map[string]string
	if before.Status != after.Status {
		meta = map[string]string{"from_status": string(before.Status), "to_status": string(after.Status)}
	}
	r.Record(ctx, after.ID, ActionUpdated, fmt.Sprintf("%q updated", after.Title), diff, meta)
}
