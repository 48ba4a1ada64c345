package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/teamboard/internal/task"
	taskrepo "github.com/kazz187/teamboard/internal/task/repositoryimpl"
	"github.com/kazz187/teamboard/internal/trash"
	trashrepo "github.com/kazz187/teamboard/internal/trash/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/storage"
)

var errInjected = errors.New("injected failure")

// faultyStorage fails writes or deletes under the configured prefixes.
type faultyStorage struct {
	*storage.MemoryStorage
	mu         sync.Mutex
	failWrite  string
	failDelete string
}

func (s *faultyStorage) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	fail := s.failWrite != "" && strings.HasPrefix(path, s.failWrite+"/")
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.MemoryStorage.Write(ctx, path, data)
}

func (s *faultyStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	fail := s.failDelete != "" && strings.HasPrefix(path, s.failDelete+"/")
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.MemoryStorage.Delete(ctx, path)
}

func (s *faultyStorage) heal() {
	s.mu.Lock()
	s.failWrite, s.failDelete = "", ""
	s.mu.Unlock()
}

type fixture struct {
	store *faultyStorage
	tasks *taskrepo.YAMLRepository
	trash *trashrepo.YAMLRepository
	now   time.Time
	ids   int
	coord *Coordinator
}

var day0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: &faultyStorage{MemoryStorage: storage.NewMemoryStorage()},
		now:   day0,
	}
	f.tasks = taskrepo.NewYAMLRepository(f.store)
	f.trash = trashrepo.NewYAMLRepository(f.store)
	opts = append([]Option{
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			f.ids++
			return fmt.Sprintf("tr%03d", f.ids)
		}),
	}, opts...)
	f.coord = NewCoordinator(f.tasks, f.trash, opts...)
	return f
}

func (f *fixture) createTask(t *testing.T, id, title string) *task.Task {
	t.Helper()
	tk := &task.Task{
		ID:          id,
		Title:       title,
		Description: "quarterly numbers",
		Priority:    task.PriorityHigh,
		Status:      task.StatusInProgress,
		DueDate:     "2026-03-10",
		Assignee:    "ana",
		CreatedAt:   day0.Add(-48 * time.Hour),
		UpdatedAt:   day0.Add(-24 * time.Hour),
	}
	require.NoError(t, f.tasks.Create(context.Background(), tk))
	return tk
}

func (f *fixture) taskIDs(t *testing.T) []string {
	t.Helper()
	tasks, err := f.tasks.List(context.Background(), task.Filter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	return ids
}

func (f *fixture) trashTaskIDs(t *testing.T) []string {
	t.Helper()
	entries, err := f.trash.List(context.Background(), nil)
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.TaskID)
	}
	return ids
}

func TestCoordinator_DraftReportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	original := f.createTask(t, "t1", "Draft report")

	entry, err := f.coord.MoveToTrash(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, "t1", entry.TaskID)
	assert.Equal(t, day0, entry.RemovedAt)
	assert.Equal(t, day0.Add(10*24*time.Hour), entry.ExpiresAt)
	assert.Empty(t, f.taskIDs(t))
	assert.Equal(t, []string{"t1"}, f.trashTaskIDs(t))

	f.now = day0.Add(3 * 24 * time.Hour)
	assert.Equal(t, 7, entry.DaysRemaining(f.now))

	restored, err := f.coord.Restore(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, "t1", restored.ID)
	assert.Equal(t, original.Title, restored.Title)
	assert.Equal(t, original.Description, restored.Description)
	assert.Equal(t, original.Priority, restored.Priority)
	assert.Equal(t, original.Status, restored.Status)
	assert.Equal(t, original.DueDate, restored.DueDate)
	assert.Equal(t, original.Assignee, restored.Assignee)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
	assert.Equal(t, f.now, restored.UpdatedAt)

	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Empty(t, f.trashTaskIDs(t))

	stored, err := f.tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Draft report", stored.Title)
}

func TestCoordinator_MoveToTrashAndRestoreKeepStoresDisjoint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var tasks []*task.Task
	for i := range 5 {
		tasks = append(tasks, f.createTask(t, fmt.Sprintf("t%d", i), fmt.Sprintf("Task %d", i)))
	}

	var entries []*trash.Entry
	for _, tk := range tasks[:3] {
		e, err := f.coord.MoveToTrash(ctx, tk)
		require.NoError(t, err)
		entries = append(entries, e)
	}
	_, err := f.coord.Restore(ctx, entries[1])
	require.NoError(t, err)

	live := f.taskIDs(t)
	trashed := f.trashTaskIDs(t)
	assert.ElementsMatch(t, []string{"t1", "t3", "t4"}, live)
	assert.ElementsMatch(t, []string{"t0", "t2"}, trashed)
	for _, id := range live {
		assert.NotContains(t, trashed, id)
	}
}

func TestCoordinator_RestoreConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.createTask(t, "t1", "Draft report")

	entry, err := f.coord.MoveToTrash(ctx, tk)
	require.NoError(t, err)

	// Another writer recreated a task with the same id.
	f.createTask(t, "t1", "Replacement")

	_, err = f.coord.Restore(ctx, entry)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	left, err := f.trash.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft report", left.Title)

	live, err := f.tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Replacement", live.Title)
}

func TestCoordinator_PermanentlyDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	var purged int
	f := newFixture(t, WithListener(ListenerFunc(func(_ context.Context, tr Transition, _ *trash.Entry) {
		if tr == TransitionPurged {
			purged++
		}
	})))
	entryA, err := f.coord.MoveToTrash(ctx, f.createTask(t, "a", "Draft report"))
	require.NoError(t, err)
	entryB, err := f.coord.MoveToTrash(ctx, f.createTask(t, "b", "Review budget"))
	require.NoError(t, err)
	storedB, err := f.trash.Get(ctx, entryB.ID)
	require.NoError(t, err)

	require.NoError(t, f.coord.PermanentlyDelete(ctx, entryA))
	require.NoError(t, f.coord.PermanentlyDelete(ctx, entryA))
	assert.Equal(t, 1, purged)

	assert.Equal(t, []string{"b"}, f.trashTaskIDs(t))
	afterB, err := f.trash.Get(ctx, entryB.ID)
	require.NoError(t, err)
	assert.Equal(t, storedB, afterB)
	assert.Empty(t, f.taskIDs(t))
}

// racingTrash inserts a new entry right after EmptyTrash took its snapshot.
type racingTrash struct {
	trash.Repository
	once sync.Once
	late *trash.Entry
}

func (r *racingTrash) List(ctx context.Context, filter func(*trash.Entry) bool) ([]*trash.Entry, error) {
	entries, err := r.Repository.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.once.Do(func() {
		err = r.Repository.Create(ctx, r.late)
	})
	return entries, err
}

func TestCoordinator_EmptyTrashLeavesLaterEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := range 4 {
		_, err := f.coord.MoveToTrash(ctx, f.createTask(t, fmt.Sprintf("t%d", i), "old"))
		require.NoError(t, err)
	}

	late := trash.NewEntry("late", &task.Task{ID: "t9", Title: "late", Priority: task.PriorityLow, Status: task.StatusPending}, day0)
	racing := &racingTrash{Repository: f.trash, late: late}
	coord := NewCoordinator(f.tasks, racing, WithClock(func() time.Time { return f.now }), WithPurgeConcurrency(1))

	removed, err := coord.EmptyTrash(ctx)
	require.NoError(t, err)
	assert.Len(t, removed, 4)
	assert.Equal(t, []string{"t9"}, f.trashTaskIDs(t))
}

func TestCoordinator_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	oldEntry, err := f.coord.MoveToTrash(ctx, f.createTask(t, "old", "old"))
	require.NoError(t, err)
	f.now = day0.Add(5 * 24 * time.Hour)
	_, err = f.coord.MoveToTrash(ctx, f.createTask(t, "new", "new"))
	require.NoError(t, err)

	f.now = day0.Add(9*24*time.Hour + time.Hour)
	assert.Equal(t, 1, oldEntry.DaysRemaining(f.now))
	removed, err := f.coord.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)

	f.now = day0.Add(10 * 24 * time.Hour)
	removed, err = f.coord.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "old", removed[0].TaskID)
	assert.Equal(t, []string{"new"}, f.trashTaskIDs(t))
}

func TestCoordinator_MoveToTrashInsertFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.createTask(t, "t1", "Draft report")
	f.store.failWrite = trashrepo.TrashPrefix

	_, err := f.coord.MoveToTrash(ctx, tk)
	require.Error(t, err)
	assert.False(t, IsInconsistent(err))
	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Empty(t, f.trashTaskIDs(t))
}

func TestCoordinator_MoveToTrashDeleteFailureIsReconciled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.createTask(t, "t1", "Draft report")
	f.store.failDelete = taskrepo.TasksPrefix

	entry, err := f.coord.MoveToTrash(ctx, tk)
	require.Error(t, err)
	assert.True(t, IsInconsistent(err))
	assert.True(t, cerr.IsCode(err, cerr.Aborted))
	assert.True(t, errors.Is(err, errInjected))
	require.NotNil(t, entry)
	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Equal(t, []string{"t1"}, f.trashTaskIDs(t))

	f.store.heal()
	resolved, err := f.coord.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, OutcomeKeptTrash, resolved[0].Outcome)
	assert.Empty(t, f.taskIDs(t))
	assert.Equal(t, []string{"t1"}, f.trashTaskIDs(t))
}

func TestCoordinator_RestoreDeleteFailureIsReconciled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry, err := f.coord.MoveToTrash(ctx, f.createTask(t, "t1", "Draft report"))
	require.NoError(t, err)

	f.now = day0.Add(time.Hour)
	f.store.failDelete = trashrepo.TrashPrefix
	restored, err := f.coord.Restore(ctx, entry)
	require.Error(t, err)
	assert.True(t, IsInconsistent(err))
	require.NotNil(t, restored)
	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Equal(t, []string{"t1"}, f.trashTaskIDs(t))

	f.store.heal()
	resolved, err := f.coord.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, OutcomeKeptTask, resolved[0].Outcome)
	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Empty(t, f.trashTaskIDs(t))
}

func TestCoordinator_ReconcileWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createTask(t, "t1", "live")
	_, err := f.coord.MoveToTrash(ctx, f.createTask(t, "t2", "gone"))
	require.NoError(t, err)

	resolved, err := f.coord.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Equal(t, []string{"t1"}, f.taskIDs(t))
	assert.Equal(t, []string{"t2"}, f.trashTaskIDs(t))
}

func TestCoordinator_ReconcileCollapsesDuplicateEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tk := f.createTask(t, "t1", "Draft report")

	first, err := f.coord.MoveToTrash(ctx, tk)
	require.NoError(t, err)
	// A second move of the same snapshot that lost the race on the task delete.
	second := trash.NewEntry("tr-late", tk, day0.Add(time.Minute))
	require.NoError(t, f.trash.Create(ctx, second))
	other, err := f.coord.MoveToTrash(ctx, f.createTask(t, "t2", "Review budget"))
	require.NoError(t, err)

	resolved, err := f.coord.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, Resolution{TaskID: "t1", TrashID: first.ID, Outcome: OutcomeDroppedOlderEntry}, resolved[0])

	_, err = f.trash.Get(ctx, first.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	_, err = f.trash.Get(ctx, second.ID)
	assert.NoError(t, err)
	_, err = f.trash.Get(ctx, other.ID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, f.trashTaskIDs(t))
	assert.Empty(t, f.taskIDs(t))

	resolved, err = f.coord.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
