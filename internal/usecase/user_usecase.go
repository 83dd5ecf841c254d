package usecase

import (
	"context"
	"time"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"

	"github.com/google/uuid"
)

// CreateUserInput is used by admins to create accounts directly.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      entity.Role
	Gender    string
	BirthDate *time.Time
	Bio       string
	Image     string
	Active    bool
}

// UpdateUserInput holds the profile fields a user may change. Nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Password  *string
	Gender    *string
	BirthDate *time.Time
	Bio       *string
	Image     *string
	// Role is honored for admins only.
	Role *entity.Role
}

// ListUsersOutput is one page of users.
type ListUsersOutput struct {
	Count int64
	Users []*entity.User
}

// UserUsecase manages user records.
type UserUsecase interface {
	List(ctx context.Context, q *query.ListQuery) (*ListUsersOutput, error)
	Create(ctx context.Context, actor *entity.User, input *CreateUserInput) (*entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Update(ctx context.Context, actor *entity.User, id uuid.UUID, input *UpdateUserInput) (*entity.User, error)
	Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error
}
