// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Social identity providers.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderTwitter  = "twitter"
	ProviderLinkedIn = "linkedin"
)

// Identity is a social login linked to a user account.
type Identity struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Provider    string         // e.g. "google"
	ExternalID  string         // The user's id at the provider.
	AccessToken string         // Provider access token from the last sign-in.
	Raw         map[string]any // Raw profile payload.
	CreatedAt   time.Time
}

// RefreshSession is a persisted, single-use refresh grant bound to the access
// token it was issued with. Only keyed hashes of both tokens are stored.
type RefreshSession struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	TokenHash        string
	RefreshTokenHash string
	ExpiresAt        time.Time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the session can no longer be redeemed at now.
func (s *RefreshSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenPair is the credential bundle handed to clients after authentication.
type TokenPair struct {
	TokenType        string
	AccessToken      string
	RefreshToken     string
	ExpiresInMinutes int
}
