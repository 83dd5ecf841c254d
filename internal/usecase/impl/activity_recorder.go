package impl

import (
	"context"
	"log/slog"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"

	"go.uber.org/fx"
)

// activityMessages maps each recorded event to its audit message.
var activityMessages = map[string]string{
	entity.EventSignup:     "User signup",
	entity.EventSignin:     "User signin",
	entity.EventOAuth:      "User oauth login",
	entity.EventActivate:   "User activated successfully",
	entity.EventReactivate: "User sent reactivate mail",
	entity.EventRefresh:    "User auth token refresh",
	entity.EventForgot:     "User forgot mail, with reset password sent",
	entity.EventReset:      "User reset password successfully",
	entity.EventLogout:     "User logout",

	entity.EventUserCreate: "User created new user",
	entity.EventUserUpdate: "User updated user",
	entity.EventUserDelete: "User deleted user",

	entity.EventAddressCreate: "User created new address",
	entity.EventAddressUpdate: "User updated address",
	entity.EventAddressDelete: "User deleted address",

	entity.EventActivityDelete: "User deleted activity",
}

// ActivityRecorder appends an audit record for every domain event and
// forwards it to the external publisher.
type ActivityRecorder struct {
	activityRepo repository.ActivityRepository
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// ActivityRecorderParams holds dependencies for ActivityRecorder, injected by Fx.
type ActivityRecorderParams struct {
	fx.In

	ActivityRepo repository.ActivityRepository
	Publisher    service.EventPublisher
	Bus          service.EventBus
	Logger       *slog.Logger
}

// RegisterActivityRecorder subscribes the recorder to every audited event.
func RegisterActivityRecorder(params ActivityRecorderParams) *ActivityRecorder {
	recorder := &ActivityRecorder{
		activityRepo: params.ActivityRepo,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
	for name := range activityMessages {
		params.Bus.Subscribe(name, recorder.Record)
	}

	return recorder
}

// Record persists the event. Failures are logged, never returned.
func (r *ActivityRecorder) Record(ctx context.Context, event entity.Event) {
	logger := r.logger.With(slog.String("event", event.Name), slog.String("request_id", event.RequestID))

	activity := &entity.Activity{
		UserID: event.ActorID,
		Label:  event.Name,
		Action: entity.ActivityAction{
			TargetID: event.TargetID,
			Module:   event.Module,
		},
		Message: activityMessages[event.Name],
	}
	if err := r.activityRepo.Create(ctx, activity); err != nil {
		logger.Error("Failed to record activity", slog.Any("error", err))

		return
	}

	err := r.publisher.PublishActivityEvent(ctx, &service.ActivityEvent{
		RequestID:  event.RequestID,
		ActivityID: activity.ID.String(),
		UserID:     event.ActorID.String(),
		Activity:   event.Name,
		TargetID:   event.TargetID.String(),
		Module:     event.Module,
		Message:    activity.Message,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		logger.Warn("Failed to forward activity event", slog.Any("error", err))
	}
}
