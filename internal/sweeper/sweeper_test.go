package sweeper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/task"
	taskrepo "github.com/kazz187/teamboard/internal/task/repositoryimpl"
	"github.com/kazz187/teamboard/internal/trash"
	trashrepo "github.com/kazz187/teamboard/internal/trash/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/storage"
)

var removedAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T, now time.Time) (*Sweeper, *taskrepo.YAMLRepository, *trashrepo.YAMLRepository) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	tasks := taskrepo.NewYAMLRepository(store)
	entries := trashrepo.NewYAMLRepository(store)

	// expired entry
	old := &task.Task{ID: "old", Title: "old", Priority: task.PriorityLow, Status: task.StatusPending}
	require.NoError(t, entries.Create(ctx, trash.NewEntry("e-old", old, removedAt)))

	// fresh entry
	fresh := &task.Task{ID: "fresh", Title: "fresh", Priority: task.PriorityLow, Status: task.StatusPending}
	require.NoError(t, entries.Create(ctx, trash.NewEntry("e-fresh", fresh, now.Add(-time.Hour))))

	// duplicate left behind by a failed restore
	dup := &task.Task{ID: "dup", Title: "dup", Priority: task.PriorityLow, Status: task.StatusPending, UpdatedAt: now.Add(-time.Minute)}
	require.NoError(t, entries.Create(ctx, trash.NewEntry("e-dup", dup, now.Add(-2*time.Hour))))
	require.NoError(t, tasks.Create(ctx, dup))

	coord := lifecycle.NewCoordinator(tasks, entries, lifecycle.WithClock(func() time.Time { return now }))
	return New(coord, time.Hour), tasks, entries
}

func TestSweeper_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := removedAt.Add(trash.RetentionWindow + time.Hour)
	s, tasks, entries := setup(t, now)

	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, res.Purged, 1)
	assert.Equal(t, "e-old", res.Purged[0].ID)
	require.Len(t, res.Reconciled, 1)
	assert.Equal(t, lifecycle.OutcomeKeptTask, res.Reconciled[0].Outcome)

	left, err := entries.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "e-fresh", left[0].ID)

	ok, err := tasks.Exists(ctx, "dup")
	require.NoError(t, err)
	assert.True(t, ok)

	res, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Purged)
	assert.Empty(t, res.Reconciled)
}

func TestSweeper_StartStopsOnCancel(t *testing.T) {
	now := removedAt.Add(trash.RetentionWindow)
	s, _, entries := setup(t, now)
	s.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		left, err := entries.List(context.Background(), func(e *trash.Entry) bool { return e.ID == "e-old" })
		return err == nil && len(left) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_Disabled(t *testing.T) {
	s := New(nil, 0)
	assert.NoError(t, s.Start(context.Background()))
}

func TestServer_Sweep(t *testing.T) {
	now := removedAt.Add(trash.RetentionWindow + time.Hour)
	s, _, _ := setup(t, now)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	NewServer(s).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trash/sweep", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Purged, 1)
	assert.Len(t, res.Reconciled, 1)
}
