package usecase

import (
	"context"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"

	"github.com/google/uuid"
)

// AddressInput holds the writable address fields.
type AddressInput struct {
	Street    string
	Area      string
	City      string
	State     string
	Landmark  string
	Pincode   string
	Latitude  float64
	Longitude float64
	Tag       string
	// UserID lets admins file an address for another user.
	UserID *uuid.UUID
}

// ListAddressesOutput is one page of addresses.
type ListAddressesOutput struct {
	Count     int64
	Addresses []*entity.Address
}

// AddressUsecase manages user addresses. Non-admins only see their own.
type AddressUsecase interface {
	List(ctx context.Context, actor *entity.User, q *query.ListQuery) (*ListAddressesOutput, error)
	Create(ctx context.Context, actor *entity.User, input *AddressInput) (*entity.Address, error)
	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Address, error)
	Update(ctx context.Context, actor *entity.User, id uuid.UUID, input *AddressInput) (*entity.Address, error)
	Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error
}
