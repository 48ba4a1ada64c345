package repositoryimpl

import (
	"context"

	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const TasksPrefix = "tasks"

var _ task.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	tasks *record.Collection[task.Task]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		tasks: record.NewCollection(s, TasksPrefix, "task", func(t *task.Task) string { return t.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	return r.tasks.Insert(ctx, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	return r.tasks.Get(ctx, id)
}

func (r *YAMLRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.tasks.Exists(ctx, id)
}

// List returns matching tasks ordered by id. New ids are ULIDs, so this is
// creation order for tasks created by this service.
func (r *YAMLRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	return r.tasks.Select(ctx, filter.Match)
}

func (r *YAMLRepository) Update(ctx context.Context, id string, mutate func(*task.Task) error) (*task.Task, error) {
	return r.tasks.Update(ctx, id, mutate)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.tasks.Delete(ctx, id)
}
