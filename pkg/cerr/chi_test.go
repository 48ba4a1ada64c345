package cerr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewJSONResponseChiMiddleware()(h).ServeHTTP(rec, req)
	return rec
}

func TestJSONResponseMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONResponse(r.Context(), map[string]string{"id": "t1"})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":"t1"}`,
		},
		{
			name: "created",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]string{"id": "t1"})
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":"t1"}`,
		},
		{
			name: "coded error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetNewJSONError(r.Context(), AlreadyExists, "task t1 already exists", errors.New("dup"))
			},
			wantStatus: http.StatusConflict,
			wantBody:   `{"code":"already_exists","message":"task t1 already exists"}`,
		},
		{
			name: "plain error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONError(r.Context(), errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"unknown","message":"unknown error"}`,
		},
		{
			name: "handler wrote itself",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
			wantStatus: http.StatusAccepted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.handler, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody == "" {
				assert.Empty(t, rec.Body.String())
				return
			}
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDecodeJSONRequest(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "ok", body: `{"title":"a"}`, want: "a"},
		{name: "empty", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"title":`, wantErr: "malformed request body"},
		{name: "unknown field", body: `{"title":"a","extra":1}`, wantErr: "malformed request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := DecodeJSONRequest(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), &p)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsCode(err, InvalidArgument))
				var ce *Error
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tt.wantErr, ce.Msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Title)
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=10&offset=-1&page=x", nil)

	n, err := QueryInt(r, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = QueryInt(r, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, err = QueryInt(r, "offset", 0)
	assert.True(t, IsCode(err, InvalidArgument))
	_, err = QueryInt(r, "page", 0)
	assert.True(t, IsCode(err, InvalidArgument))
}

func TestDecodeHTTPError(t *testing.T) {
	body, err := json.Marshal(httpError{Code: "not_found", Message: "task not found"})
	require.NoError(t, err)

	e := DecodeHTTPError(http.StatusNotFound, body)
	assert.Equal(t, NotFound, e.Code)
	assert.Equal(t, "task not found", e.Msg)

	e = DecodeHTTPError(http.StatusBadGateway, []byte("<html>"))
	assert.Equal(t, Unknown, e.Code)
	assert.Equal(t, "unexpected status 502", e.Msg)
}
