package repositoryimpl

import (
	"context"
	"sort"

	"github.com/kazz187/teamboard/internal/trash"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const TrashPrefix = "trash"

var _ trash.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	entries *record.Collection[trash.Entry]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		entries: record.NewCollection(s, TrashPrefix, "trash entry", func(e *trash.Entry) string { return e.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, e *trash.Entry) error {
	return r.entries.Insert(ctx, e)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*trash.Entry, error) {
	return r.entries.Get(ctx, id)
}

func (r *YAMLRepository) List(ctx context.Context, filter func(*trash.Entry) bool) ([]*trash.Entry, error) {
	all, err := r.entries.Select(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RemovedAt.After(all[j].RemovedAt)
	})
	return all, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.entries.Delete(ctx, id)
}
