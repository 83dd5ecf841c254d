package service

import (
	"context"
	"time"
)

// ActivityEvent is the wire form of a recorded activity, forwarded to external
// consumers.
type ActivityEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Activity   string    `json:"activity"`
	TargetID   string    `json:"target_id,omitempty"`
	Module     string    `json:"module"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishActivityEvent forwards a recorded activity
	PublishActivityEvent(ctx context.Context, event *ActivityEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
