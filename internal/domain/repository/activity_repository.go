package repository

import (
	"context"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/errors"

	"github.com/google/uuid"
)

// ErrActivityNotFound is returned when an activity is not found.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepository persists the audit trail. It is implemented by both the
// relational and the document store.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	// List returns one page of activities. A non-nil userID scopes the page to that user.
	List(ctx context.Context, userID *uuid.UUID, q *query.ListQuery) ([]*entity.Activity, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
