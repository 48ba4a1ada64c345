package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.listNotifications)
		r.Post("/", s.createNotification)
		r.Post("/read-all", s.markAllRead)
		r.Post("/{notificationID}/read", s.markRead)
	})
}

type CreateNotificationRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}

type MarkAllReadRequest struct {
	UserID string `json:"user_id"`
}

type MarkAllReadResponse struct {
	Notifications []*Notification `json:"notifications"`
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "user_id is required", nil)
		return
	}
	ns, unread, err := s.service.Latest(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if ns == nil {
		ns = []*Notification{}
	}
	cerr.SetJSONResponse(ctx, &ListNotificationsResponse{Notifications: ns, UnreadCount: unread})
}

func (s *Server) createNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateNotificationRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	n, err := s.service.Notify(ctx, req.UserID, req.Title, req.Message, req.Type)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, n)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := s.service.MarkRead(ctx, chi.URLParam(r, "notificationID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, n)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req MarkAllReadRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.UserID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "user_id is required", nil)
		return
	}
	changed, err := s.service.MarkAllRead(ctx, req.UserID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &MarkAllReadResponse{Notifications: changed})
}
