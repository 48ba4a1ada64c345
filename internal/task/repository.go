package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter Filter) ([]*Task, error)
	// Update reads the task, applies mutate and writes the result back. An
	// error from mutate aborts the write and is returned as is.
	Update(ctx context.Context, id string, mutate func(*Task) error) (*Task, error)
	Delete(ctx context.Context, id string) error
}
