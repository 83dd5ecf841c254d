// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"restapi/config"
	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

// refreshTokenBytes is the amount of randomness appended to refresh tokens.
const refreshTokenBytes = 40

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  []byte // Secret key for signing access tokens.
	refreshSecret []byte // Key for hashing stored tokens.
	secrets       service.SecretGenerator
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config, secrets service.SecretGenerator) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		secrets:       secrets,
	}, nil
}

// GenerateAccessToken signs {sub, iat, exp, typ} with HS256.
func (s *jwtService) GenerateAccessToken(userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),         // Subject (who the token is for)
		"iat": now.Unix(),              // Issued At
		"exp": now.Add(ttl).Unix(),     // Expiration Time
		"typ": service.TokenTypeAccess, // Type of token
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}

	return signed, nil
}

// ValidateAccessToken verifies the signature and expiry and resolves the subject.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.accessSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token structure")
	}

	if claims.Type != service.TokenTypeAccess {
		return nil, errors.Errorf("unexpected token type %q", claims.Type)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject")
	}
	claims.UserID = userID

	return claims, nil
}

// GenerateRefreshToken returns "<userID>.<80 hex chars>".
func (s *jwtService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	random, err := s.secrets.HexToken(refreshTokenBytes)
	if err != nil {
		return "", err
	}

	return userID.String() + "." + random, nil
}

// HashToken returns hex(HMAC-SHA256(refreshSecret, token)).
func (s *jwtService) HashToken(token string) string {
	mac := hmac.New(sha256.New, s.refreshSecret)
	mac.Write([]byte(token))

	return hex.EncodeToString(mac.Sum(nil))
}
