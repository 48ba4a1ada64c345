package integration

import "context"

type Repository interface {
	// Get returns the stored integration of kind; NotFound when it was never
	// configured.
	Get(ctx context.Context, kind Kind) (*Integration, error)
	List(ctx context.Context) ([]*Integration, error)
	Save(ctx context.Context, i *Integration) error
}
