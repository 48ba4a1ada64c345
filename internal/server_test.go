package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/teamboard/internal/config"
	"github.com/kazz187/teamboard/internal/evaluation"
	evaluationrepo "github.com/kazz187/teamboard/internal/evaluation/repositoryimpl"
	"github.com/kazz187/teamboard/internal/event"
	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/integration"
	integrationrepo "github.com/kazz187/teamboard/internal/integration/repositoryimpl"
	"github.com/kazz187/teamboard/internal/kpi"
	kpirepo "github.com/kazz187/teamboard/internal/kpi/repositoryimpl"
	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/notification"
	notificationrepo "github.com/kazz187/teamboard/internal/notification/repositoryimpl"
	"github.com/kazz187/teamboard/internal/pushnotification"
	pushsubrepo "github.com/kazz187/teamboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/teamboard/internal/report"
	"github.com/kazz187/teamboard/internal/sweeper"
	"github.com/kazz187/teamboard/internal/task"
	taskrepo "github.com/kazz187/teamboard/internal/task/repositoryimpl"
	"github.com/kazz187/teamboard/internal/tasklog"
	tasklogrepo "github.com/kazz187/teamboard/internal/tasklog/repositoryimpl"
	"github.com/kazz187/teamboard/internal/trash/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/storage"
)

const testAPIKey = "secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := storage.NewMemoryStorage()
	bus := eventbus.New()

	taskRepo := taskrepo.NewYAMLRepository(store)
	trashRepo := repositoryimpl.NewYAMLRepository(store)
	taskLogRepo := tasklogrepo.NewYAMLRepository(store)
	kpiRepo := kpirepo.NewYAMLRepository(store)
	evaluationRepo := evaluationrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	recorder := tasklog.NewRecorder(taskLogRepo)
	coord := lifecycle.NewCoordinator(taskRepo, trashRepo,
		lifecycle.WithListener(recorder),
		lifecycle.WithListener(lifecycle.NewEventPublisher(bus)),
	)
	notifications := notification.NewService(notificationrepo.NewYAMLRepository(store), bus)
	vapidEnv := &config.VAPIDEnv{}
	sender := pushnotification.NewSender(vapidEnv, pushSubRepo)

	srv := NewServer(
		&config.BaseEnv{APIKey: testAPIKey},
		task.NewServer(taskRepo, recorder, bus),
		lifecycle.NewServer(coord, taskRepo, trashRepo),
		sweeper.NewServer(sweeper.New(coord, 0)),
		tasklog.NewServer(taskLogRepo),
		kpi.NewServer(kpiRepo, bus),
		evaluation.NewServer(evaluationRepo, notifications, bus),
		notification.NewServer(notifications),
		integration.NewServer(integrationrepo.NewYAMLRepository(store), bus),
		report.NewServer(taskRepo, kpiRepo, evaluationRepo),
		event.NewServer(bus),
		pushnotification.NewServer(vapidEnv, pushSubRepo, sender),
	)
	return srv.Handler()
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_APIKey(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_NotFound(t *testing.T) {
	h := newTestHandler(t)
	rec := call(t, h, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestServer_TrashRoundTrip(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h, http.MethodPost, "/api/tasks", `{"title":"Prepare release notes","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = call(t, h, http.MethodPost, "/api/tasks/"+created.ID+"/trash", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view lifecycle.EntryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, created.ID, view.TaskID)
	assert.Equal(t, 10, view.DaysRemaining)

	rec = call(t, h, http.MethodGet, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/trash/"+view.ID+"/restore", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/tasks/"+created.ID+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history tasklog.ListTaskLogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, 3, history.Pagination.Total)

	rec = call(t, h, http.MethodGet, "/api/reports/tasks", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
