package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

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
	r.Route("/integrations", func(r chi.Router) {
		r.Get("/", s.listIntegrations)
		r.Put("/{kind}", s.connectIntegration)
		r.Delete("/{kind}", s.disconnectIntegration)
	})
}

type ListIntegrationsResponse struct {
	Integrations []*Integration `json:"integrations"`
}

// listIntegrations returns every supported kind, including unconfigured ones.
func (s *Server) listIntegrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stored, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	byKind := make(map[Kind]*Integration, len(stored))
	for _, i := range stored {
		byKind[i.Kind] = i
	}
	out := make([]*Integration, 0, len(Kinds))
	for _, k := range Kinds {
		if i, ok := byKind[k]; ok {
			out = append(out, i)
			continue
		}
		out = append(out, &Integration{Kind: k, Name: k.DisplayName()})
	}
	cerr.SetJSONResponse(ctx, &ListIntegrationsResponse{Integrations: out})
}

func (s *Server) connectIntegration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := kindParam(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var settings Settings
	if err := cerr.DecodeJSONRequest(r, &settings); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := settings.Validate(kind); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, err.Error(), err)
		return
	}
	i := &Integration{
		Kind:      kind,
		Name:      kind.DisplayName(),
		Enabled:   true,
		Settings:  settings,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.save(ctx, i); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, i)
}

// disconnectIntegration disables the integration and keeps its settings.
func (s *Server) disconnectIntegration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := kindParam(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	i, err := s.repo.Get(ctx, kind)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	i.Enabled = false
	i.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, i); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, i)
}

func (s *Server) save(ctx context.Context, i *Integration) error {
	if err := s.repo.Save(ctx, i); err != nil {
		return err
	}
	s.eventBus.PublishNew(eventbus.IntegrationChanged, string(i.Kind), i.Name, map[string]string{
		"enabled": fmt.Sprint(i.Enabled),
	})
	return nil
}

func kindParam(r *http.Request) (Kind, error) {
	kind := Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return "", cerr.NewError(cerr.NotFound, fmt.Sprintf("unknown integration %q", kind), nil)
	}
	return kind, nil
}
