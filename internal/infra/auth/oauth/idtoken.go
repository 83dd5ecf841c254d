package oauth

import (
	"context"
	"log/slog"

	"google.golang.org/api/idtoken"

	"restapi/config"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

// validateFunc matches idtoken.Validate.
type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleIDTokenVerifier verifies Google Sign-In ID tokens posted by clients.
type GoogleIDTokenVerifier struct {
	clientID string
	validate validateFunc
	logger   *slog.Logger
}

// NewGoogleIDTokenVerifier creates the verifier for the configured Google client.
func NewGoogleIDTokenVerifier(cfg *config.Config, logger *slog.Logger) service.IDTokenVerifier {
	clientID := ""
	if cfg.OAuth != nil && cfg.OAuth.Google != nil {
		clientID = cfg.OAuth.Google.ClientID
	}

	return &GoogleIDTokenVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
		logger:   logger,
	}
}

// VerifyIDToken checks signature, audience, issuer and email verification.
func (v *GoogleIDTokenVerifier) VerifyIDToken(ctx context.Context, token string) (*service.OAuthProfile, error) {
	if v.clientID == "" {
		return nil, errors.New("google client id is not configured")
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		v.logger.Debug("Google ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	if err := verifyGoogleClaims(payload); err != nil {
		return nil, errors.Wrap(err, "token verification failed")
	}

	claims := payload.Claims

	return &service.OAuthProfile{
		Provider:      entity.ProviderGoogle,
		ExternalID:    payload.Subject,
		Email:         stringField(claims, "email"),
		FirstName:     stringField(claims, "given_name"),
		LastName:      stringField(claims, "family_name"),
		AvatarURL:     stringField(claims, "picture"),
		EmailVerified: boolField(claims, "email_verified"),
		Raw:           claims,
	}, nil
}

func verifyGoogleClaims(payload *idtoken.Payload) error {
	if payload.Issuer != "https://accounts.google.com" && payload.Issuer != "accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}
	if payload.Subject == "" {
		return errors.New("missing subject")
	}
	if !boolField(payload.Claims, "email_verified") {
		return errors.New("email not verified")
	}

	return nil
}
