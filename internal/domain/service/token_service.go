package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess is the "typ" claim carried by access tokens.
const TokenTypeAccess = "access"

// Claims defines the claims carried by access tokens. Subject, IssuedAt and
// ExpiresAt come from the registered claims.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	Type   string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens and derives the opaque refresh
// tokens paired with them.
type TokenService interface {
	// GenerateAccessToken signs an access token for the user, valid for ttl from now.
	GenerateAccessToken(userID uuid.UUID, now time.Time, ttl time.Duration) (string, error)

	// ValidateAccessToken checks signature, expiry and token type.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// GenerateRefreshToken returns "<userID>.<random hex>".
	GenerateRefreshToken(userID uuid.UUID) (string, error)

	// HashToken derives the keyed digest under which a token is stored.
	HashToken(token string) string
}
