package usecase

import (
	"context"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"

	"github.com/google/uuid"
)

// ListActivitiesOutput is one page of activities.
type ListActivitiesOutput struct {
	Count      int64
	Activities []*entity.Activity
}

// ActivityUsecase exposes the audit trail. Non-admins only see their own.
type ActivityUsecase interface {
	List(ctx context.Context, actor *entity.User, q *query.ListQuery) (*ListActivitiesOutput, error)
	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Activity, error)
	Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error
}
