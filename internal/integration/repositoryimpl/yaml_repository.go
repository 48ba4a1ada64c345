package repositoryimpl

import (
	"context"

	"github.com/kazz187/teamboard/internal/integration"
	"github.com/kazz187/teamboard/pkg/cerr"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const IntegrationsPrefix = "integrations"

var _ integration.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	integrations *record.Collection[integration.Integration]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		integrations: record.NewCollection(s, IntegrationsPrefix, "integration", func(i *integration.Integration) string { return string(i.Kind) }),
	}
}

func (r *YAMLRepository) Get(ctx context.Context, kind integration.Kind) (*integration.Integration, error) {
	return r.integrations.Get(ctx, string(kind))
}

func (r *YAMLRepository) List(ctx context.Context) ([]*integration.Integration, error) {
	return r.integrations.Select(ctx, nil)
}

// Save upserts; the kind is the record id.
func (r *YAMLRepository) Save(ctx context.Context, i *integration.Integration) error {
	err := r.integrations.Replace(ctx, i)
	if cerr.IsCode(err, cerr.NotFound) {
		return r.integrations.Insert(ctx, i)
	}
	return err
}
