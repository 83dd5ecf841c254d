// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"restapi/config"
	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tokenIssuer implements the TokenIssuer interface.
type tokenIssuer struct {
	tokenService service.TokenService
	sessionRepo  repository.RefreshSessionRepository
	userRepo     repository.UserRepository
	tokenType    string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// TokenIssuerParams holds dependencies for TokenIssuer, injected by Fx.
type TokenIssuerParams struct {
	fx.In

	TokenService service.TokenService
	SessionRepo  repository.RefreshSessionRepository
	UserRepo     repository.UserRepository
	Config       *config.Config
	Logger       *slog.Logger
}

func NewTokenIssuer(params TokenIssuerParams) usecase.TokenIssuer {
	auth := params.Config.Auth

	return &tokenIssuer{
		tokenService: params.TokenService,
		sessionRepo:  params.SessionRepo,
		userRepo:     params.UserRepo,
		tokenType:    auth.HeaderScheme,
		accessTTL:    time.Duration(auth.AccessTokenTTLMinutes) * time.Minute,
		refreshTTL:   time.Duration(auth.RefreshTokenTTLDays) * 24 * time.Hour,
		now:          time.Now,
		logger:       params.Logger,
	}
}

func (iss *tokenIssuer) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, iss.logger)
}

// IssueTokenPair is the only place new sessions are opened.
func (iss *tokenIssuer) IssueTokenPair(ctx context.Context, user *entity.User) (*entity.TokenPair, error) {
	now := iss.now()

	accessToken, err := iss.tokenService.GenerateAccessToken(user.ID, now, iss.accessTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	refreshToken, err := iss.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	session := &entity.RefreshSession{
		UserID:           user.ID,
		TokenHash:        iss.tokenService.HashToken(accessToken),
		RefreshTokenHash: iss.tokenService.HashToken(refreshToken),
		ExpiresAt:        now.Add(iss.refreshTTL),
		IsActive:         true,
	}
	if err := iss.sessionRepo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to persist refresh session")
	}

	return &entity.TokenPair{
		TokenType:        iss.tokenType,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresInMinutes: int(iss.accessTTL / time.Minute),
	}, nil
}

// RedeemRefresh consumes the session at most once. Absent, expired and already
// consumed sessions all fail with InvalidToken.
func (iss *tokenIssuer) RedeemRefresh(ctx context.Context, accessToken, refreshToken string) (*entity.User, error) {
	session, err := iss.sessionRepo.FindActive(ctx,
		iss.tokenService.HashToken(accessToken),
		iss.tokenService.HashToken(refreshToken),
	)
	if errors.Is(err, repository.ErrRefreshSessionNotFound) {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "refresh session not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load refresh session")
	}

	consumed, err := iss.sessionRepo.Deactivate(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to consume refresh session")
	}
	if session.Expired(iss.now()) {
		iss.log(ctx).Debug("Refresh session expired", slog.Any("sessionID", session.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "refresh session expired")
	}
	if !consumed {
		iss.log(ctx).Warn("Refresh token replayed", slog.Any("sessionID", session.ID), slog.Any("userID", session.UserID))

		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "refresh session already consumed")
	}

	user, err := iss.userRepo.FindByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "session user no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session user")
	}
	if !user.Active {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "session user is not active")
	}

	return user, nil
}

func (iss *tokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	session, err := iss.sessionRepo.FindActiveByRefreshHash(ctx, iss.tokenService.HashToken(refreshToken))
	if errors.Is(err, repository.ErrRefreshSessionNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to load refresh session")
	}

	if _, err := iss.sessionRepo.Deactivate(ctx, session.ID); err != nil {
		return errors.Wrap(err, "failed to revoke refresh session")
	}

	return nil
}

func (iss *tokenIssuer) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return errors.Wrap(iss.sessionRepo.DeactivateAllByUserID(ctx, userID), "failed to revoke refresh sessions")
}

// Authenticate verifies the token statelessly, then confirms the subject is
// still present and active.
func (iss *tokenIssuer) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := iss.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidAuthorization, err.Error())
	}

	user, err := iss.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrInvalidAuthorization, "token subject not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load token subject")
	}
	if !user.Active {
		return nil, errors.Wrap(domainerrors.ErrInvalidAuthorization, "token subject is not active")
	}

	return user, nil
}
