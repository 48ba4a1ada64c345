package evaluation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/teamboard/internal/evaluation"
	evaluationrepo "github.com/kazz187/teamboard/internal/evaluation/repositoryimpl"
	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/notification"
	notificationrepo "github.com/kazz187/teamboard/internal/notification/repositoryimpl"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/storage"
)

func newRouter(t *testing.T) (http.Handler, *notification.Service) {
	t.Helper()
	store := storage.NewMemoryStorage()
	bus := eventbus.New()
	notifications := notification.NewService(notificationrepo.NewYAMLRepository(store), bus)
	srv := evaluation.NewServer(evaluationrepo.NewYAMLRepository(store), notifications, bus)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.Routes(r)
	return r, notifications
}

func TestServer_CreateEvaluationNotifiesEvaluated(t *testing.T) {
	r, notifications := newRouter(t)

	rec := httptest.NewRecorder()
	body := `{"evaluator":"ana","evaluated":"ben","rating":4,"category":"teamwork","feedback":"great"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/evaluations", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp evaluation.CreateEvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Evaluation.Rating)
	require.NotNil(t, resp.Notification)
	assert.Equal(t, "ben", resp.Notification.UserID)
	assert.Equal(t, "ana rated you 4 stars in teamwork", resp.Notification.Message)

	ns, unread, err := notifications.Latest(context.Background(), "ben")
	require.NoError(t, err)
	assert.Len(t, ns, 1)
	assert.Equal(t, 1, unread)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evaluations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list evaluation.ListEvaluationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Evaluations, 1)
}

func TestServer_CreateEvaluationRejectsInvalidRating(t *testing.T) {
	r, notifications := newRouter(t)

	for _, body := range []string{
		`{"evaluator":"ana","evaluated":"ben","rating":0,"category":"teamwork"}`,
		`{"evaluator":"ana","evaluated":"ben","rating":6,"category":"teamwork"}`,
		`{"evaluator":"ana","evaluated":"ben","rating":3,"category":"charisma"}`,
		`{"evaluator":"ana","rating":3}`,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/evaluations", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	_, unread, err := notifications.Latest(context.Background(), "ben")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
