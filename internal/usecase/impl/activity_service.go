package impl

import (
	"context"
	"log/slog"

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

// activityService implements the ActivityUsecase interface.
type activityService struct {
	activityRepo repository.ActivityRepository
	bus          service.EventBus
	logger       *slog.Logger
}

// ActivityServiceParams holds dependencies for ActivityService, injected by Fx.
type ActivityServiceParams struct {
	fx.In

	ActivityRepo repository.ActivityRepository
	Bus          service.EventBus
	Logger       *slog.Logger
}

func NewActivityService(params ActivityServiceParams) usecase.ActivityUsecase {
	return &activityService{
		activityRepo: params.ActivityRepo,
		bus:          params.Bus,
		logger:       params.Logger,
	}
}

func (srv *activityService) List(ctx context.Context, actor *entity.User, q *query.ListQuery) (*usecase.ListActivitiesOutput, error) {
	activities, count, err := srv.activityRepo.List(ctx, ownerScope(actor), q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activities")
	}

	return &usecase.ListActivitiesOutput{Count: count, Activities: activities}, nil
}

func (srv *activityService) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Activity, error) {
	activity, err := srv.activityRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrActivityNotFound) {
		return nil, errors.Wrapf(domainerrors.ErrActivityNotFound, "activity %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get activity")
	}
	if !actor.CanAccess(activity.UserID) {
		return nil, errors.Wrap(domainerrors.ErrInvalidAccess, "activity belongs to another user")
	}

	return activity, nil
}

// Delete soft-deletes an activity. Admin only.
func (srv *activityService) Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return errors.Wrap(domainerrors.ErrInvalidAccess, "delete refused")
	}

	if err := srv.activityRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return errors.Wrapf(domainerrors.ErrActivityNotFound, "activity %s", id)
		}

		return errors.Wrap(err, "failed to delete activity")
	}
	publishEvent(ctx, srv.bus, entity.EventActivityDelete, actor.ID, id, entity.ModuleActivity)

	return nil
}
