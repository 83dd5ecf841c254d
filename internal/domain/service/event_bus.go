package service

import (
	"context"

	"restapi/internal/domain/entity"
)

// EventHandler reacts to a published event. Errors are the handler's to log.
type EventHandler func(ctx context.Context, event entity.Event)

// EventBus decouples use cases from the side effects triggered by their events.
type EventBus interface {
	// Publish hands the event to every subscriber without waiting for them.
	Publish(ctx context.Context, event entity.Event)

	// Subscribe registers handler for the named event.
	Subscribe(name string, handler EventHandler)
}
