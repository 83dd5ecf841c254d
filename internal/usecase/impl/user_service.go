package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"restapi/config"
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

// userService implements the UserUsecase interface.
type userService struct {
	userRepo    repository.UserRepository
	tokenIssuer usecase.TokenIssuer
	notifier    service.AuthNotifier
	bus         service.EventBus
	preparer    *userPreparer
	now         func() time.Time
	logger      *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	TokenIssuer usecase.TokenIssuer
	Hasher      service.PasswordHasher
	Secrets     service.SecretGenerator
	Notifier    service.AuthNotifier
	Bus         service.EventBus
	Config      *config.Config
	Logger      *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:    params.UserRepo,
		tokenIssuer: params.TokenIssuer,
		notifier:    params.Notifier,
		bus:         params.Bus,
		preparer:    newUserPreparer(params.Config, params.Hasher, params.Secrets),
		now:         time.Now,
		logger:      params.Logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns one page of users.
func (srv *userService) List(ctx context.Context, q *query.ListQuery) (*usecase.ListUsersOutput, error) {
	users, count, err := srv.userRepo.List(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return &usecase.ListUsersOutput{Count: count, Users: users}, nil
}

// Create adds an account on behalf of an admin. Inactive accounts get an
// activation code mailed to them.
func (srv *userService) Create(ctx context.Context, actor *entity.User, input *usecase.CreateUserInput) (*entity.User, error) {
	phone, err := srv.preparer.normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if !role.IsValid() {
		role = entity.RoleUser
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     input.Email,
		Phone:     phone,
		Role:      role,
		Gender:    genderOrDefault(input.Gender),
		BirthDate: input.BirthDate,
		Bio:       input.Bio,
		Image:     input.Image,
		Active:    input.Active,
	}
	if err := srv.preparer.prepareForSave(user, input.Password, srv.now()); err != nil {
		return nil, err
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		return nil, translateWriteError(err, "failed to create user")
	}
	srv.log(ctx).Info("User created", slog.Any("userID", user.ID), slog.Any("actorID", actor.ID))

	if !user.Active {
		if err := srv.notifier.SendActivationMail(ctx, user); err != nil {
			srv.log(ctx).Error("Failed to send activation mail", slog.Any("userID", user.ID), slog.Any("error", err))
		}
	}
	publishEvent(ctx, srv.bus, entity.EventUserCreate, actor.ID, user.ID, entity.ModuleUser)

	return user, nil
}

// Get returns a non-deleted user.
func (srv *userService) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrapf(domainerrors.ErrUserNotFound, "user %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return user, nil
}

// Update changes a profile. Users may only update themselves; role changes need an admin.
func (srv *userService) Update(ctx context.Context, actor *entity.User, id uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	if !actor.CanAccess(id) {
		return nil, errors.Wrap(domainerrors.ErrInvalidAccess, "update refused")
	}

	user, err := srv.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := srv.apply(user, actor, input); err != nil {
		return nil, err
	}

	password := ""
	if input.Password != nil {
		password = *input.Password
	}
	if err := srv.preparer.prepareForSave(user, password, srv.now()); err != nil {
		return nil, err
	}
	if err := srv.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrUserNotFound, "user %s", id)
		}

		return nil, translateWriteError(err, "failed to update user")
	}
	if password != "" {
		if err := srv.tokenIssuer.RevokeAll(ctx, user.ID); err != nil {
			srv.log(ctx).Error("Failed to revoke sessions after password change", slog.Any("userID", user.ID), slog.Any("error", err))
		}
	}
	publishEvent(ctx, srv.bus, entity.EventUserUpdate, actor.ID, user.ID, entity.ModuleUser)

	return user, nil
}

func (srv *userService) apply(user, actor *entity.User, input *usecase.UpdateUserInput) error {
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		phone, err := srv.preparer.normalizePhone(*input.Phone)
		if err != nil {
			return err
		}
		user.Phone = phone
	}
	if input.Gender != nil {
		user.Gender = genderOrDefault(*input.Gender)
	}
	if input.BirthDate != nil {
		user.BirthDate = input.BirthDate
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Image != nil {
		user.Image = *input.Image
	}
	if input.Role != nil && actor.IsAdmin() && input.Role.IsValid() {
		user.Role = *input.Role
	}

	return nil
}

// Delete soft-deletes a user and ends its sessions.
func (srv *userService) Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	if !actor.CanAccess(id) {
		return errors.Wrap(domainerrors.ErrInvalidAccess, "delete refused")
	}

	if err := srv.userRepo.SoftDelete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrapf(domainerrors.ErrUserNotFound, "user %s", id)
		}

		return errors.Wrap(err, "failed to delete user")
	}
	if err := srv.tokenIssuer.RevokeAll(ctx, id); err != nil {
		srv.log(ctx).Error("Failed to revoke sessions of deleted user", slog.Any("userID", id), slog.Any("error", err))
	}
	publishEvent(ctx, srv.bus, entity.EventUserDelete, actor.ID, id, entity.ModuleUser)

	return nil
}
