package notification

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/pkg/cerr"
)

// Service owns notification state changes so every creator publishes the
// same events.
type Service struct {
	repo     Repository
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewService(repo Repository, eventBus *eventbus.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus, now: time.Now}
}

func (s *Service) Notify(ctx context.Context, userID, title, message string, typ Type) (*Notification, error) {
	n := &Notification{
		ID:        ulid.Make().String(),
		UserID:    strings.TrimSpace(userID),
		Title:     strings.TrimSpace(title),
		Message:   message,
		Type:      typ,
		CreatedAt: s.now().UTC(),
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if err := n.Validate(); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, err.Error(), err)
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.eventBus.PublishNew(eventbus.NotificationCreated, n.ID, n.Title, map[string]string{
		"user_id": n.UserID,
		"type":    string(n.Type),
		"message": n.Message,
	})
	return n, nil
}

// Latest returns the newest ListLimit notifications of userID and the number
// of unread ones among all of them.
func (s *Service) Latest(ctx context.Context, userID string) ([]*Notification, int, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	unread := 0
	for _, n := range all {
		if !n.Read {
			unread++
		}
	}
	if len(all) > ListLimit {
		all = all[:ListLimit]
	}
	return all, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	var changed bool
	n, err := s.repo.Update(ctx, id, func(n *Notification) error {
		changed = !n.Read
		n.Read = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return n, nil
	}
	s.eventBus.PublishNew(eventbus.NotificationRead, n.ID, "", map[string]string{"user_id": n.UserID})
	return n, nil
}

// MarkAllRead marks every unread notification of userID and returns the ones
// it changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) ([]*Notification, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	changed := []*Notification{}
	for _, n := range all {
		if n.Read {
			continue
		}
		updated, err := s.repo.Update(ctx, n.ID, func(n *Notification) error {
			n.Read = true
			return nil
		})
		if err != nil {
			return changed, err
		}
		changed = append(changed, updated)
	}
	if len(changed) > 0 {
		s.eventBus.PublishNew(eventbus.NotificationRead, userID, "", map[string]string{"user_id": userID, "all": "true"})
	}
	return changed, nil
}
