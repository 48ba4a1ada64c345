package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/internal/notification"
	"github.com/kazz187/teamboard/pkg/cerr"
)

// Notifier tells the evaluated member about a new evaluation.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ notification.Type) (*notification.Notification, error)
}

type Server struct {
	repo     Repository
	notifier Notifier
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, notifier Notifier, eventBus *eventbus.Bus) *Server {
	return &Server{repo: repo, notifier: notifier, eventBus: eventBus, now: time.Now}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Get("/", s.listEvaluations)
		r.Post("/", s.createEvaluation)
	})
}

type CreateEvaluationRequest struct {
	Evaluator string   `json:"evaluator"`
	Evaluated string   `json:"evaluated"`
	Rating    int      `json:"rating"`
	Category  Category `json:"category"`
	Feedback  string   `json:"feedback"`
}

type CreateEvaluationResponse struct {
	Evaluation   *Evaluation                `json:"evaluation"`
	Notification *notification.Notification `json:"notification,omitempty"`
}

type ListEvaluationsResponse struct {
	Evaluations []*Evaluation `json:"evaluations"`
}

func (s *Server) createEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateEvaluationRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	e := &Evaluation{
		ID:        ulid.Make().String(),
		Evaluator: strings.TrimSpace(req.Evaluator),
		Evaluated: strings.TrimSpace(req.Evaluated),
		Rating:    req.Rating,
		Category:  req.Category,
		Feedback:  req.Feedback,
		CreatedAt: s.now().UTC(),
	}
	if e.Category == "" {
		e.Category = CategoryPerformance
	}
	if err := e.Validate(); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, err.Error(), err)
		return
	}
	if err := s.repo.Create(ctx, e); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.eventBus.PublishNew(eventbus.EvaluationCreated, e.ID, "", map[string]string{
		"evaluated": e.Evaluated,
		"category":  string(e.Category),
	})

	// The evaluation is already stored; a failed notification is logged only.
	n, err := s.notifier.Notify(ctx, e.Evaluated, "New evaluation received",
		fmt.Sprintf("%s rated you %d stars in %s", e.Evaluator, e.Rating, e.Category), notification.TypeInfo)
	if err != nil {
		slog.ErrorContext(ctx, "failed to notify evaluated member", "evaluation_id", e.ID, "error", err)
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, &CreateEvaluationResponse{Evaluation: e, Notification: n})
}

func (s *Server) listEvaluations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	es, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if es == nil {
		es = []*Evaluation{}
	}
	cerr.SetJSONResponse(ctx, &ListEvaluationsResponse{Evaluations: es})
}
