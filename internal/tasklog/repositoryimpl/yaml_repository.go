package repositoryimpl

import (
	"context"

	"github.com/kazz187/teamboard/internal/tasklog"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const TaskLogsPrefix = "task_logs"

var _ tasklog.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	logs *record.Collection[tasklog.TaskLog]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		logs: record.NewCollection(s, TaskLogsPrefix, "task log", func(l *tasklog.TaskLog) string { return l.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, l *tasklog.TaskLog) error {
	return r.logs.Insert(ctx, l)
}

// List relies on ULID ids: path order is creation order.
func (r *YAMLRepository) List(ctx context.Context, taskID string, limit, offset int) ([]*tasklog.TaskLog, int, error) {
	all, err := r.logs.Select(ctx, func(l *tasklog.TaskLog) bool {
		return taskID == "" || l.TaskID == taskID
	})
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}
