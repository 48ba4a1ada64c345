package kpi

import "context"

type Repository interface {
	Create(ctx context.Context, k *KPI) error
	Get(ctx context.Context, id string) (*KPI, error)
	// List returns all KPIs, newest first.
	List(ctx context.Context) ([]*KPI, error)
	Update(ctx context.Context, id string, mutate func(*KPI) error) (*KPI, error)
	Delete(ctx context.Context, id string) error
}
