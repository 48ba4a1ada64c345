package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/teamboard/internal/config"
	"github.com/kazz187/teamboard/internal/evaluation"
	"github.com/kazz187/teamboard/internal/event"
	"github.com/kazz187/teamboard/internal/integration"
	"github.com/kazz187/teamboard/internal/kpi"
	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/notification"
	"github.com/kazz187/teamboard/internal/pushnotification"
	"github.com/kazz187/teamboard/internal/report"
	"github.com/kazz187/teamboard/internal/sweeper"
	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/internal/tasklog"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/clog"
)

const (
	healthPath     = "/health"
	grpcHealthPath = "/grpc.health.v1.Health/Check"
	eventsPath     = "/api/events"
)

type Server struct {
	server                 *http.Server
	env                    *config.BaseEnv
	taskServer             *task.Server
	lifecycleServer        *lifecycle.Server
	sweeperServer          *sweeper.Server
	taskLogServer          *tasklog.Server
	kpiServer              *kpi.Server
	evaluationServer       *evaluation.Server
	notificationServer     *notification.Server
	integrationServer      *integration.Server
	reportServer           *report.Server
	eventServer            *event.Server
	pushNotificationServer *pushnotification.Server
}

func NewServer(
	env *config.BaseEnv,
	taskServer *task.Server,
	lifecycleServer *lifecycle.Server,
	sweeperServer *sweeper.Server,
	taskLogServer *tasklog.Server,
	kpiServer *kpi.Server,
	evaluationServer *evaluation.Server,
	notificationServer *notification.Server,
	integrationServer *integration.Server,
	reportServer *report.Server,
	eventServer *event.Server,
	pushNotificationServer *pushnotification.Server,
) *Server {
	return &Server{
		env:                    env,
		taskServer:             taskServer,
		lifecycleServer:        lifecycleServer,
		sweeperServer:          sweeperServer,
		taskLogServer:          taskLogServer,
		kpiServer:              kpiServer,
		evaluationServer:       evaluationServer,
		notificationServer:     notificationServer,
		integrationServer:      integrationServer,
		reportServer:           reportServer,
		eventServer:            eventServer,
		pushNotificationServer: pushNotificationServer,
	}
}

type routes interface {
	Routes(r chi.Router)
}

// Handler builds the full HTTP handler: the JSON API under /api, health
// checks, CORS, h2c and the API key check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(clog.WithChiFilter(clog.SkipPaths(eventsPath))),
			cerr.NewJSONResponseChiMiddleware(),
		)
		for _, rs := range []routes{
			s.taskServer,
			s.lifecycleServer,
			s.sweeperServer,
			s.taskLogServer,
			s.kpiServer,
			s.evaluationServer,
			s.notificationServer,
			s.integrationServer,
			s.reportServer,
			s.eventServer,
			s.pushNotificationServer,
		} {
			rs.Routes(r)
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()
	mux.Handle(healthPath, &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker()))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of every
// request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath || r.URL.Path == grpcHealthPath {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if apiKey == "" || apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
