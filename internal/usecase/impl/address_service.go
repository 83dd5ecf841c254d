package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/query"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// addressService implements the AddressUsecase interface.
type addressService struct {
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	bus         service.EventBus
	logger      *slog.Logger
}

// AddressServiceParams holds dependencies for AddressService, injected by Fx.
type AddressServiceParams struct {
	fx.In

	AddressRepo repository.AddressRepository
	UserRepo    repository.UserRepository
	Bus         service.EventBus
	Logger      *slog.Logger
}

func NewAddressService(params AddressServiceParams) usecase.AddressUsecase {
	return &addressService{
		addressRepo: params.AddressRepo,
		userRepo:    params.UserRepo,
		bus:         params.Bus,
		logger:      params.Logger,
	}
}

func (srv *addressService) List(ctx context.Context, actor *entity.User, q *query.ListQuery) (*usecase.ListAddressesOutput, error) {
	addresses, count, err := srv.addressRepo.List(ctx, ownerScope(actor), q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list addresses")
	}

	return &usecase.ListAddressesOutput{Count: count, Addresses: addresses}, nil
}

func (srv *addressService) Create(ctx context.Context, actor *entity.User, input *usecase.AddressInput) (*entity.Address, error) {
	ownerID := actor.ID
	if input.UserID != nil && actor.IsAdmin() {
		ownerID = *input.UserID
		if _, err := srv.userRepo.FindByID(ctx, ownerID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, errors.Wrapf(domainerrors.ErrUserNotFound, "user %s", ownerID)
			}

			return nil, errors.Wrap(err, "failed to load address owner")
		}
	}

	address := &entity.Address{UserID: ownerID}
	applyAddressInput(address, input)

	if err := srv.addressRepo.Create(ctx, address); err != nil {
		return nil, errors.Wrap(err, "failed to create address")
	}
	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Info("Address created", slog.Any("addressID", address.ID))
	publishEvent(ctx, srv.bus, entity.EventAddressCreate, actor.ID, address.ID, entity.ModuleAddress)

	return address, nil
}

func (srv *addressService) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Address, error) {
	address, err := srv.addressRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, errors.Wrapf(domainerrors.ErrAddressNotFound, "address %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get address")
	}
	if !actor.CanAccess(address.UserID) {
		return nil, errors.Wrap(domainerrors.ErrInvalidAccess, "address belongs to another user")
	}

	return address, nil
}

func (srv *addressService) Update(ctx context.Context, actor *entity.User, id uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	address, err := srv.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	applyAddressInput(address, input)
	if err := srv.addressRepo.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrAddressNotFound, "address %s", id)
		}

		return nil, errors.Wrap(err, "failed to update address")
	}
	publishEvent(ctx, srv.bus, entity.EventAddressUpdate, actor.ID, address.ID, entity.ModuleAddress)

	return address, nil
}

func (srv *addressService) Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	if _, err := srv.Get(ctx, actor, id); err != nil {
		return err
	}

	if err := srv.addressRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return errors.Wrapf(domainerrors.ErrAddressNotFound, "address %s", id)
		}

		return errors.Wrap(err, "failed to delete address")
	}
	publishEvent(ctx, srv.bus, entity.EventAddressDelete, actor.ID, id, entity.ModuleAddress)

	return nil
}

func applyAddressInput(address *entity.Address, input *usecase.AddressInput) {
	address.Street = strings.TrimSpace(input.Street)
	address.Area = strings.TrimSpace(input.Area)
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.Landmark = strings.TrimSpace(input.Landmark)
	address.Pincode = strings.TrimSpace(input.Pincode)
	address.Latitude = input.Latitude
	address.Longitude = input.Longitude

	switch input.Tag {
	case entity.AddressTagHome, entity.AddressTagOffice, entity.AddressTagOther:
		address.Tag = input.Tag
	default:
		address.Tag = entity.AddressTagHome
	}
}

// ownerScope returns nil for admins, who see every record.
func ownerScope(actor *entity.User) *uuid.UUID {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID

	return &id
}
