package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity is the audit trail record written for every meaningful user action.
type Activity struct {
	ID        uuid.UUID
	UserID    uuid.UUID // Acting user.
	Label     string    // Event name, e.g. "signin".
	Action    ActivityAction
	Message   string
	User      *User // Populated only when requested.
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActivityAction points at the record the activity was about.
type ActivityAction struct {
	TargetID uuid.UUID
	Module   string
}
