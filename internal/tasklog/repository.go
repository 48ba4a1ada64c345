package tasklog

import "context"

type Repository interface {
	Create(ctx context.Context, log *TaskLog) error
	// List returns the logs of taskID (all tasks when empty) oldest first,
	// paginated, together with the unpaginated total.
	List(ctx context.Context, taskID string, limit, offset int) ([]*TaskLog, int, error)
}
