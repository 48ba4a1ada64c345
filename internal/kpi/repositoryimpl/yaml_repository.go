package repositoryimpl

import (
	"context"
	"slices"

	"github.com/kazz187/teamboard/internal/kpi"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const KPIsPrefix = "kpis"

var _ kpi.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	kpis *record.Collection[kpi.KPI]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		kpis: record.NewCollection(s, KPIsPrefix, "kpi", func(k *kpi.KPI) string { return k.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, k *kpi.KPI) error {
	return r.kpis.Insert(ctx, k)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*kpi.KPI, error) {
	return r.kpis.Get(ctx, id)
}

func (r *YAMLRepository) List(ctx context.Context) ([]*kpi.KPI, error) {
	all, err := r.kpis.Select(ctx, nil)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b *kpi.KPI) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, id string, mutate func(*kpi.KPI) error) (*kpi.KPI, error) {
	return r.kpis.Update(ctx, id, mutate)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.kpis.Delete(ctx, id)
}
