package report

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/teamboard/internal/evaluation"
	"github.com/kazz187/teamboard/internal/kpi"
	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	tasks       task.Repository
	kpis        kpi.Repository
	evaluations evaluation.Repository
	now         func() time.Time
}

func NewServer(tasks task.Repository, kpis kpi.Repository, evaluations evaluation.Repository) *Server {
	return &Server{tasks: tasks, kpis: kpis, evaluations: evaluations, now: time.Now}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/reports/{kind}", s.getReport)
}

type GetReportResponse struct {
	Kind        Kind      `json:"kind"`
	GeneratedAt time.Time `json:"generated_at"`
	Data        any       `json:"data"`
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		cerr.SetNewJSONError(ctx, cerr.NotFound, fmt.Sprintf("unknown report %q", kind), nil)
		return
	}

	now := s.now()
	var data any
	switch kind {
	case KindKPIs:
		kpis, err := s.kpis.List(ctx)
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		data = KPIs(kpis)
	case KindEvaluations:
		evals, err := s.evaluations.List(ctx)
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		data = Evaluations(evals)
	default:
		tasks, err := s.tasks.List(ctx, task.Filter{})
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		switch kind {
		case KindTasks:
			data = Tasks(tasks)
		case KindTeam:
			data = Team(tasks)
		case KindDashboard:
			data = Dashboard(tasks, now)
		}
	}
	cerr.SetJSONResponse(ctx, &GetReportResponse{Kind: kind, GeneratedAt: now.UTC(), Data: data})
}
