package tasklog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/teamboard/pkg/cerr"
)

const defaultPageSize = 50

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListTaskLogsResponse struct {
	Logs       []*TaskLog `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/tasks/{taskID}/history", s.listTaskLogs)
}

func (s *Server) listTaskLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := cerr.QueryInt(r, "limit", defaultPageSize)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	offset, err := cerr.QueryInt(r, "offset", 0)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	logs, total, err := s.repo.List(ctx, chi.URLParam(r, "taskID"), limit, offset)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if logs == nil {
		logs = []*TaskLog{}
	}
	cerr.SetJSONResponse(ctx, &ListTaskLogsResponse{
		Logs:       logs,
		Pagination: Pagination{Total: total, Limit: limit, Offset: offset},
	})
}
