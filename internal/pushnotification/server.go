package pushnotification

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/config"
	"github.com/kazz187/teamboard/internal/pushsubscription"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
	sender   *Sender
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, sender *Sender) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
		sender:   sender,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/push", func(r chi.Router) {
		r.Get("/vapid-public-key", s.getVapidPublicKey)
		r.Post("/subscriptions", s.registerPushSubscription)
		r.Delete("/subscriptions", s.unregisterPushSubscription)
		r.Post("/test", s.sendTestNotification)
	})
}

type GetVapidPublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type RegisterPushSubscriptionRequest struct {
	UserID    string `json:"user_id"`
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

type UnregisterPushSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
}

type SendTestNotificationResponse struct {
	Sent int `json:"sent"`
}

func (s *Server) getVapidPublicKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(ctx, &GetVapidPublicKeyResponse{PublicKey: s.vapidEnv.VAPIDPublicKey})
}

// registerPushSubscription is idempotent per endpoint: re-registering
// refreshes the keys and owner of the existing subscription.
func (s *Server) registerPushSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterPushSubscriptionRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	switch {
	case req.Endpoint == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	case req.P256dhKey == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "p256dh_key is required", nil)
		return
	case req.AuthKey == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "auth_key is required", nil)
		return
	}

	existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	switch {
	case err == nil:
		updated, err := s.repo.Update(ctx, existing.ID, func(sub *pushsubscription.Subscription) error {
			sub.UserID = req.UserID
			sub.P256dhKey = req.P256dhKey
			sub.AuthKey = req.AuthKey
			return nil
		})
		if err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		cerr.SetJSONResponse(ctx, updated)
		return
	case !cerr.IsCode(err, cerr.NotFound):
		cerr.SetJSONError(ctx, err)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		UserID:    req.UserID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, sub)
}

func (s *Server) unregisterPushSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UnregisterPushSubscriptionRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	if err := s.repo.DeleteByEndpoint(ctx, req.Endpoint); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusNoContent, nil)
}

func (s *Server) sendTestNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sent := s.sender.SendToAll(ctx, &NotificationPayload{
		Title: "Teamboard Test",
		Body:  "Push notifications are working!",
	})
	cerr.SetJSONResponse(ctx, &SendTestNotificationResponse{Sent: sent})
}
