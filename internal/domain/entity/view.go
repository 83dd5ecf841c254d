package entity

import (
	"time"

	"github.com/google/uuid"
)

// Secure user fields. They never leave the service, whatever the caller selects.
const (
	UserFieldPassword   = "password"
	UserFieldSalt       = "salt"
	UserFieldActivation = "activate"
	UserFieldReset      = "reset"
	UserFieldServices   = "services"
)

// UserSecureFields lists the user fields excluded from every projection.
var UserSecureFields = []string{
	UserFieldPassword,
	UserFieldSalt,
	UserFieldActivation,
	UserFieldReset,
	UserFieldServices,
}

// UserView is the public projection of a User. It has no secure fields, so it
// can be serialized as is.
type UserView struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Role      Role           `json:"role"`
	Gender    string         `json:"gender"`
	BirthDate *time.Time     `json:"birthDate,omitempty"`
	Bio       string         `json:"bio,omitempty"`
	Image     string         `json:"image,omitempty"`
	Active    bool           `json:"activeFlag"`
	Verified  bool           `json:"verifiedFlag"`
	Providers []string       `json:"providers,omitempty"`
	Addresses []*AddressView `json:"addresses,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewUserView projects u onto its public fields.
func NewUserView(u *User) *UserView {
	if u == nil {
		return nil
	}

	view := &UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Gender:    u.Gender,
		BirthDate: u.BirthDate,
		Bio:       u.Bio,
		Image:     u.Image,
		Active:    u.Active,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, identity := range u.Identities {
		view.Providers = append(view.Providers, identity.Provider)
	}
	for _, address := range u.Addresses {
		view.Addresses = append(view.Addresses, NewAddressView(address))
	}

	return view
}

// AddressView is the public projection of an Address.
type AddressView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Street    string    `json:"street"`
	Area      string    `json:"area,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Landmark  string    `json:"landmark,omitempty"`
	Pincode   string    `json:"pincode"`
	Latitude  float64   `json:"lat,omitempty"`
	Longitude float64   `json:"long,omitempty"`
	Tag       string    `json:"tag"`
	User      *UserView `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAddressView projects a onto its public fields.
func NewAddressView(a *Address) *AddressView {
	if a == nil {
		return nil
	}

	return &AddressView{
		ID:        a.ID,
		UserID:    a.UserID,
		Street:    a.Street,
		Area:      a.Area,
		City:      a.City,
		State:     a.State,
		Landmark:  a.Landmark,
		Pincode:   a.Pincode,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Tag:       a.Tag,
		User:      NewUserView(a.User),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ActivityView is the public projection of an Activity.
type ActivityView struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"userId"`
	Activity string    `json:"activity"`
	Action   struct {
		TargetID uuid.UUID `json:"targetId"`
		Module   string    `json:"module"`
	} `json:"action"`
	Message   string    `json:"message"`
	User      *UserView `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewActivityView projects a onto its public fields.
func NewActivityView(a *Activity) *ActivityView {
	if a == nil {
		return nil
	}

	view := &ActivityView{
		ID:        a.ID,
		UserID:    a.UserID,
		Activity:  a.Label,
		Message:   a.Message,
		User:      NewUserView(a.User),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	view.Action.TargetID = a.Action.TargetID
	view.Action.Module = a.Action.Module

	return view
}
