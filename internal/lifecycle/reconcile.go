package lifecycle

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kazz187/teamboard/internal/trash"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Outcome string

const (
	// OutcomeKeptTask means the task was updated after it was trashed, so a
	// restore won and the stale entry was dropped.
	OutcomeKeptTask Outcome = "kept_task"
	// OutcomeKeptTrash means the entry is newer than the task, so a trash
	// move won and the leftover task was dropped.
	OutcomeKeptTrash Outcome = "kept_trash"
	// OutcomeDroppedOlderEntry means two concurrent moves left several
	// entries for one task; all but the newest were dropped.
	OutcomeDroppedOlderEntry Outcome = "dropped_older_entry"
)

// Resolution describes one duplicate removed by Reconcile.
type Resolution struct {
	TaskID  string  `json:"task_id"`
	TrashID string  `json:"trash_id"`
	Outcome Outcome `json:"outcome"`
}

// Reconcile repairs half-applied transitions. Several entries for one task
// collapse onto the newest, then every task id present in both stores is
// resolved toward whichever side was written last.
func (c *Coordinator) Reconcile(ctx context.Context) ([]Resolution, error) {
	entries, err := c.trash.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RemovedAt.Before(entries[j].RemovedAt)
	})

	var resolved []Resolution
	newest := make(map[string]*trash.Entry, len(entries))
	for _, e := range entries {
		older, ok := newest[e.TaskID]
		newest[e.TaskID] = e
		if !ok {
			continue
		}
		if err := c.trash.Delete(ctx, older.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
			return resolved, err
		}
		resolved = append(resolved, c.logResolution(ctx, Resolution{
			TaskID:  older.TaskID,
			TrashID: older.ID,
			Outcome: OutcomeDroppedOlderEntry,
		}))
	}

	for _, e := range entries {
		if newest[e.TaskID] != e {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		r, ok, err := c.reconcileEntry(ctx, e)
		if err != nil {
			return resolved, err
		}
		if ok {
			resolved = append(resolved, c.logResolution(ctx, r))
		}
	}
	return resolved, nil
}

func (c *Coordinator) logResolution(ctx context.Context, r Resolution) Resolution {
	slog.InfoContext(ctx, "reconciled duplicate task",
		"task_id", r.TaskID, "trash_id", r.TrashID, "outcome", string(r.Outcome))
	return r
}

func (c *Coordinator) reconcileEntry(ctx context.Context, e *trash.Entry) (Resolution, bool, error) {
	t, err := c.tasks.Get(ctx, e.TaskID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return Resolution{}, false, nil
		}
		return Resolution{}, false, err
	}

	r := Resolution{TaskID: e.TaskID, TrashID: e.ID}
	if t.UpdatedAt.After(e.RemovedAt) {
		r.Outcome = OutcomeKeptTask
		if err := c.trash.Delete(ctx, e.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
			return Resolution{}, false, err
		}
		c.notify(ctx, TransitionRestored, e)
		return r, true, nil
	}

	r.Outcome = OutcomeKeptTrash
	if err := c.tasks.Delete(ctx, e.TaskID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		return Resolution{}, false, err
	}
	c.notify(ctx, TransitionTrashed, e)
	return r, true, nil
}
