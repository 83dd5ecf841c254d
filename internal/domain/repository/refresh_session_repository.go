package repository

import (
	"context"

	"restapi/internal/domain/entity"
	"restapi/internal/errors"

	"github.com/google/uuid"
)

// ErrRefreshSessionNotFound is returned when no active session matches.
var ErrRefreshSessionNotFound = errors.New("refresh session not found")

// RefreshSessionRepository persists refresh grants.
type RefreshSessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.RefreshSession) error

	// FindActive retrieves the active session matching both token hashes.
	FindActive(ctx context.Context, tokenHash, refreshTokenHash string) (*entity.RefreshSession, error)

	// FindActiveByRefreshHash retrieves the active session by refresh token hash alone.
	FindActiveByRefreshHash(ctx context.Context, refreshTokenHash string) (*entity.RefreshSession, error)

	// Deactivate flips an active session to inactive. It reports false when the
	// session was already inactive, which makes redemption single-use.
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)

	// DeactivateAllByUserID ends every session of the user.
	DeactivateAllByUserID(ctx context.Context, userID uuid.UUID) error
}
