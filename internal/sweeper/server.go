package sweeper

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	sweeper *Sweeper
}

func NewServer(sweeper *Sweeper) *Server {
	return &Server{sweeper: sweeper}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/trash/sweep", s.sweep)
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.sweeper.RunOnce(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, res)
}
