package repositoryimpl

import (
	"context"
	"slices"

	"github.com/kazz187/teamboard/internal/evaluation"
	"github.com/kazz187/teamboard/pkg/record"
	"github.com/kazz187/teamboard/pkg/storage"
)

const EvaluationsPrefix = "evaluations"

var _ evaluation.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	evaluations *record.Collection[evaluation.Evaluation]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{
		evaluations: record.NewCollection(s, EvaluationsPrefix, "evaluation", func(e *evaluation.Evaluation) string { return e.ID }),
	}
}

func (r *YAMLRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	return r.evaluations.Insert(ctx, e)
}

func (r *YAMLRepository) List(ctx context.Context) ([]*evaluation.Evaluation, error) {
	all, err := r.evaluations.Select(ctx, nil)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b *evaluation.Evaluation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return all, nil
}
