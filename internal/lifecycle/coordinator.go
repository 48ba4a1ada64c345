// Package lifecycle moves tasks between the task store and the trash store.
//
// Neither store supports multi-record transactions, so every transition is a
// two-step saga: insert into the destination, then delete from the source.
// If the insert fails nothing changed. If the delete fails the task is
// visible in both stores; the error is surfaced as ErrInconsistentState and
// Reconcile resolves the duplicate later. No step is rolled back.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/internal/trash"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Transition string

const (
	TransitionTrashed  Transition = "trashed"
	TransitionRestored Transition = "restored"
	TransitionPurged   Transition = "purged"
)

// Listener is told about every completed transition. It runs synchronously
// after the store calls resolved and must not block for long.
type Listener interface {
	OnTransition(ctx context.Context, tr Transition, entry *trash.Entry)
}

type ListenerFunc func(ctx context.Context, tr Transition, entry *trash.Entry)

func (f ListenerFunc) OnTransition(ctx context.Context, tr Transition, entry *trash.Entry) {
	f(ctx, tr, entry)
}

const defaultPurgeConcurrency = 8

type Coordinator struct {
	tasks     task.Repository
	trash     trash.Repository
	now       func() time.Time
	newID     func() string
	listeners []Listener
	purgeConc int
}

type Option func(*Coordinator)

// WithClock replaces time.Now; tests use it to pin removal and expiry times.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		c.newID = newID
	}
}

func WithListener(l Listener) Option {
	return func(c *Coordinator) {
		c.listeners = append(c.listeners, l)
	}
}

// WithPurgeConcurrency bounds the parallel deletes of EmptyTrash and
// PurgeExpired.
func WithPurgeConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.purgeConc = n
		}
	}
}

func NewCoordinator(tasks task.Repository, trashRepo trash.Repository, opts ...Option) *Coordinator {
	c := &Coordinator{
		tasks:     tasks,
		trash:     trashRepo,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
		purgeConc: defaultPurgeConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now is the coordinator's clock, exposed so callers can compute expiry
// figures consistently with the stored timestamps.
func (c *Coordinator) Now() time.Time {
	return c.now()
}

// MoveToTrash snapshots t into a new trash entry and removes t from the task
// store. t must be the current state of a live task; it is not re-read.
func (c *Coordinator) MoveToTrash(ctx context.Context, t *task.Task) (*trash.Entry, error) {
	entry := trash.NewEntry(c.newID(), t, c.now().UTC())
	if err := c.trash.Create(ctx, entry); err != nil {
		return nil, err
	}
	if err := c.tasks.Delete(ctx, t.ID); err != nil {
		slog.WarnContext(ctx, "task copied to trash but not removed from tasks",
			"task_id", t.ID, "trash_id", entry.ID, "error", err)
		return entry, inconsistentError("task was moved to trash but is still listed; retry or wait for reconciliation", err)
	}
	c.notify(ctx, TransitionTrashed, entry)
	return entry, nil
}

// Restore recreates the task from entry, keeping its original id and creation
// time, then removes the entry. A live task with the same id is a conflict and
// leaves the entry in place.
func (c *Coordinator) Restore(ctx context.Context, entry *trash.Entry) (*task.Task, error) {
	exists, err := c.tasks.Exists(ctx, entry.TaskID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError(entry.TaskID)
	}

	restored := entry.Task(c.now().UTC())
	if err := c.tasks.Create(ctx, restored); err != nil {
		// Lost a race with another writer between the check and the insert.
		if cerr.IsCode(err, cerr.AlreadyExists) {
			return nil, conflictError(entry.TaskID)
		}
		return nil, err
	}
	if err := c.trash.Delete(ctx, entry.ID); err != nil && !cerr.IsCode(err, cerr.NotFound) {
		slog.WarnContext(ctx, "task restored but trash entry not removed",
			"task_id", entry.TaskID, "trash_id", entry.ID, "error", err)
		return restored, inconsistentError("task was restored but is still in the trash; retry or wait for reconciliation", err)
	}
	c.notify(ctx, TransitionRestored, entry)
	return restored, nil
}

// PermanentlyDelete removes entry. Removing an entry that is already gone
// succeeds and has no other effect.
func (c *Coordinator) PermanentlyDelete(ctx context.Context, entry *trash.Entry) error {
	if err := c.trash.Delete(ctx, entry.ID); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil
		}
		return err
	}
	c.notify(ctx, TransitionPurged, entry)
	return nil
}

// EmptyTrash permanently deletes the entries present when it starts. Entries
// inserted while it runs are not touched. The removed entries are returned
// even when some deletes fail.
func (c *Coordinator) EmptyTrash(ctx context.Context) ([]*trash.Entry, error) {
	snapshot, err := c.trash.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.purgeAll(ctx, snapshot)
}

// PurgeExpired permanently deletes every entry whose retention window has
// elapsed.
func (c *Coordinator) PurgeExpired(ctx context.Context) ([]*trash.Entry, error) {
	now := c.now()
	expired, err := c.trash.List(ctx, func(e *trash.Entry) bool { return e.Expired(now) })
	if err != nil {
		return nil, err
	}
	return c.purgeAll(ctx, expired)
}

func (c *Coordinator) purgeAll(ctx context.Context, entries []*trash.Entry) ([]*trash.Entry, error) {
	var (
		mu      sync.Mutex
		removed = make([]*trash.Entry, 0, len(entries))
	)
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(c.purgeConc)
	for _, e := range entries {
		p.Go(func(ctx context.Context) error {
			if err := c.PermanentlyDelete(ctx, e); err != nil {
				return fmt.Errorf("trash entry %s: %w", e.ID, err)
			}
			mu.Lock()
			removed = append(removed, e)
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return removed, cerr.NewError(cerr.Internal, "some trash entries could not be deleted", err)
	}
	return removed, nil
}

func (c *Coordinator) notify(ctx context.Context, tr Transition, entry *trash.Entry) {
	for _, l := range c.listeners {
		l.OnTransition(ctx, tr, entry)
	}
}

// IsConflict reports whether err is a restore conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInconsistent reports whether err left a transition half applied.
func IsInconsistent(err error) bool {
	return errors.Is(err, ErrInconsistentState)
}
