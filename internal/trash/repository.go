package trash

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns entries accepted by filter (all when nil), most recently
	// removed first.
	List(ctx context.Context, filter func(*Entry) bool) ([]*Entry, error)
	Delete(ctx context.Context, id string) error
}
