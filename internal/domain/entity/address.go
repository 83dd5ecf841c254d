// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Address tags.
const (
	AddressTagHome   = "home"
	AddressTagOffice = "office"
	AddressTagOther  = "other"
)

// Address is a postal address owned by a user.
type Address struct {
	ID        uuid.UUID
	UserID    uuid.UUID // Owner.
	Street    string
	Area      string
	City      string
	State     string
	Landmark  string
	Pincode   string
	Latitude  float64
	Longitude float64
	Tag       string // One of the AddressTag* constants.
	User      *User  // Populated only when requested.
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
