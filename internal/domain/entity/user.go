// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on a user record.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
	GenderNA     = "na"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User is the core entity in the system, representing a unique "person" or "account".
type User struct {
	ID           uuid.UUID  // The Global Unique Identifier (GUID) for the user.
	FirstName    string     // Given name.
	LastName     string     // Family name.
	Email        string     // Lower-cased login identifier, unique among non-deleted users.
	Phone        string     // E.164 formatted phone number, empty when unknown.
	PasswordHash string     // bcrypt hash; the salt is embedded in the hash.
	Role         Role       // Authorization role.
	Gender       string     // One of the Gender* constants.
	BirthDate    *time.Time // Optional date of birth.
	Bio          string     // Free-form profile text.
	Image        string     // Profile image URL.
	Activation   *TimedToken
	Reset        *TimedToken
	Identities   []Identity // Linked social identities.
	Addresses    []*Address // Populated only when requested.
	Active       bool       // Set once the activation code is redeemed.
	Verified     bool       // Set when an external provider vouches for the email.
	Deleted      bool       // Soft-delete marker; deleted users never appear in reads.
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TimedToken is a single-use secret with an expiry, used for activation and
// password reset.
type TimedToken struct {
	Token    string
	ExpireAt time.Time
}

// Valid reports whether the token is still usable at now.
func (t *TimedToken) Valid(now time.Time) bool {
	return t != nil && t.Token != "" && !now.After(t.ExpireAt)
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasIdentity reports whether the provider identity is already linked.
func (u *User) HasIdentity(provider, externalID string) bool {
	for _, identity := range u.Identities {
		if identity.Provider == provider && identity.ExternalID == externalID {
			return true
		}
	}

	return false
}

// CanAccess reports whether the user may act on a record owned by ownerID.
func (u *User) CanAccess(ownerID uuid.UUID) bool {
	return u.IsAdmin() || u.ID == ownerID
}
