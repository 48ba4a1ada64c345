package evaluation

import "context"

type Repository interface {
	Create(ctx context.Context, e *Evaluation) error
	// List returns all evaluations, newest first.
	List(ctx context.Context) ([]*Evaluation, error)
}
