package impl

import (
	"context"
	"time"

	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"

	"github.com/google/uuid"
)

// publishEvent stamps the event with the request id and hands it to the bus.
func publishEvent(ctx context.Context, bus service.EventBus, name string, actorID, targetID uuid.UUID, module string) {
	bus.Publish(ctx, entity.Event{
		Name:       name,
		ActorID:    actorID,
		TargetID:   targetID,
		Module:     module,
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		OccurredAt: time.Now(),
	})
}
