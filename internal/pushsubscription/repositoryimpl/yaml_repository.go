package repositoryimpl

import (
	"context"

	"github.com/kazz187/teamboard/internal/pushsubscription"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const PushSubscriptionsPrefix = "push_subscriptions"

var _ pushsubscription.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	subs *record.Collection[pushsubscription.Subscription]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		subs: record.NewCollection(s, PushSubscriptionsPrefix, "push subscription", func(s *pushsubscription.Subscription) string { return s.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	return r.subs.Insert(ctx, s)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*pushsubscription.Subscription, error) {
	return r.subs.Get(ctx, id)
}

func (r *YAMLRepository) List(ctx context.Context) ([]*pushsubscription.Subscription, error) {
	return r.subs.Select(ctx, nil)
}

func (r *YAMLRepository) Update(ctx context.Context, id string, mutate func(*pushsubscription.Subscription) error) (*pushsubscription.Subscription, error) {
	return r.subs.Update(ctx, id, mutate)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.subs.Delete(ctx, id)
}

func (r *YAMLRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	found, err := r.subs.Select(ctx, func(s *pushsubscription.Subscription) bool {
		return s.Endpoint == endpoint
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	return found[0], nil
}

func (r *YAMLRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	s, err := r.FindByEndpoint(ctx, endpoint)
	if err != nil {
		return err
	}
	return r.Delete(ctx, s.ID)
}
