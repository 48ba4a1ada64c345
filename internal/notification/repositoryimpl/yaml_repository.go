package repositoryimpl

import (
	"context"
	"slices"

	"github.com/kazz187/teamboard/internal/notification"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const NotificationsPrefix = "notifications"

var _ notification.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	notifications *record.Collection[notification.Notification]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		notifications: record.NewCollection(s, NotificationsPrefix, "notification", func(n *notification.Notification) string { return n.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.notifications.Insert(ctx, n)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	return r.notifications.Get(ctx, id)
}

func (r *YAMLRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	all, err := r.notifications.Select(ctx, func(n *notification.Notification) bool {
		return n.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b *notification.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, id string, mutate func(*notification.Notification) error) (*notification.Notification, error) {
	return r.notifications.Update(ctx, id, mutate)
}
