package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event names published on the event bus.
const (
	EventSignup     = "signup"
	EventSignin     = "signin"
	EventOAuth      = "oauth"
	EventActivate   = "activate"
	EventReactivate = "reactivate"
	EventRefresh    = "refresh"
	EventForgot     = "forgot"
	EventReset      = "reset"
	EventLogout     = "logout"

	EventUserCreate = "user-create"
	EventUserUpdate = "user-update"
	EventUserDelete = "user-delete"

	EventAddressCreate = "address-create"
	EventAddressUpdate = "address-update"
	EventAddressDelete = "address-delete"

	EventActivityDelete = "activity-delete"
)

// Modules an event can target.
const (
	ModuleAuth     = "auth"
	ModuleUser     = "user"
	ModuleAddress  = "address"
	ModuleActivity = "activity"
)

// Event is a domain event raised by a use case after a state change.
type Event struct {
	Name       string
	ActorID    uuid.UUID // The user performing the action.
	TargetID   uuid.UUID // The record the action was about.
	Module     string
	RequestID  string
	OccurredAt time.Time
}
