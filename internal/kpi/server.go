package kpi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	repo     Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, eventBus *eventbus.Bus) *Server {
	return &Server{repo: repo, eventBus: eventBus, now: time.Now}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.Get("/", s.listKPIs)
		r.Post("/", s.createKPI)
		r.Get("/{kpiID}", s.getKPI)
		r.Put("/{kpiID}/value", s.updateKPIValue)
		r.Delete("/{kpiID}", s.deleteKPI)
	})
}

type CreateKPIRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TargetValue  float64  `json:"target_value"`
	CurrentValue float64  `json:"current_value"`
	Unit         Unit     `json:"unit"`
	Category     Category `json:"category"`
	Assignee     string   `json:"assignee"`
	Period       Period   `json:"period"`
}

type UpdateKPIValueRequest struct {
	CurrentValue float64 `json:"current_value"`
}

// View is a KPI with its derived progress figures.
type View struct {
	*KPI
	Progress float64 `json:"progress"`
	OnTrack  bool    `json:"on_track"`
	Exceeded bool    `json:"exceeded"`
}

func NewView(k *KPI) *View {
	return &View{KPI: k, Progress: k.Progress(), OnTrack: k.OnTrack(), Exceeded: k.Exceeded()}
}

type ListKPIsResponse struct {
	KPIs    []*View `json:"kpis"`
	Summary Summary `json:"summary"`
}

type DeleteKPIResponse struct {
	ID string `json:"id"`
}

func (s *Server) createKPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateKPIRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	now := s.now().UTC()
	k := &KPI{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         req.Unit,
		Category:     req.Category,
		Assignee:     strings.TrimSpace(req.Assignee),
		Period:       req.Period,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if k.Unit == "" {
		k.Unit = UnitNumber
	}
	if k.Category == "" {
		k.Category = CategoryGeneral
	}
	if k.Period == "" {
		k.Period = PeriodMonthly
	}
	if err := k.Validate(); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, err.Error(), err)
		return
	}
	if err := s.repo.Create(ctx, k); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.publish(k, "created")
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, NewView(k))
}

func (s *Server) getKPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	k, err := s.repo.Get(ctx, chi.URLParam(r, "kpiID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, NewView(k))
}

func (s *Server) listKPIs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kpis, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	views := make([]*View, 0, len(kpis))
	for _, k := range kpis {
		views = append(views, NewView(k))
	}
	cerr.SetJSONResponse(ctx, &ListKPIsResponse{KPIs: views, Summary: Summarize(kpis)})
}

func (s *Server) updateKPIValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateKPIValueRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	k, err := s.updateValue(ctx, chi.URLParam(r, "kpiID"), req.CurrentValue)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, NewView(k))
}

func (s *Server) updateValue(ctx context.Context, id string, value float64) (*KPI, error) {
	k, err := s.repo.Update(ctx, id, func(k *KPI) error {
		k.CurrentValue = value
		if err := k.Validate(); err != nil {
			return cerr.NewError(cerr.InvalidArgument, err.Error(), err)
		}
		k.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(k, "updated")
	return k, nil
}

func (s *Server) deleteKPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "kpiID")
	if err := s.repo.Delete(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.eventBus.PublishNew(eventbus.KPIChanged, id, "", map[string]string{"op": "deleted"})
	cerr.SetJSONResponse(ctx, &DeleteKPIResponse{ID: id})
}

func (s *Server) publish(k *KPI, op string) {
	s.eventBus.PublishNew(eventbus.KPIChanged, k.ID, k.Name, map[string]string{
		"op":       op,
		"category": string(k.Category),
	})
}
