package repository

import (
	"context"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/errors"

	"github.com/google/uuid"
)

// ErrAddressNotFound is returned when an address is not found.
var ErrAddressNotFound = errors.New("address not found")

// AddressRepository defines the address persistence operations.
type AddressRepository interface {
	Create(ctx context.Context, address *entity.Address) error
	Update(ctx context.Context, address *entity.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error)
	// List returns one page of addresses. A non-nil ownerID scopes the page to that user.
	List(ctx context.Context, ownerID *uuid.UUID, q *query.ListQuery) ([]*entity.Address, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
