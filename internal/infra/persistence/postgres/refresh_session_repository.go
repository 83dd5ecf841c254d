package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"
	"restapi/internal/infra/persistence/model"
)

type refreshSessionRepository struct {
	db *gorm.DB
}

// NewRefreshSessionRepository creates the refresh session store.
func NewRefreshSessionRepository(db *gorm.DB) repository.RefreshSessionRepository {
	return &refreshSessionRepository{db: db}
}

func (repo *refreshSessionRepository) Create(ctx context.Context, session *entity.RefreshSession) error {
	if session.ID == uuid.Nil {
		session.ID = newID()
	}
	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now
	session.IsActive = true

	if err := repo.db.WithContext(ctx).Create(fromRefreshSessionDomain(session)).Error; err != nil {
		return translateWriteError(err, "refreshToken", "failed to create refresh session")
	}

	return nil
}

func (repo *refreshSessionRepository) FindActive(ctx context.Context, tokenHash, refreshTokenHash string) (*entity.RefreshSession, error) {
	return repo.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("token_hash = ? AND refresh_token_hash = ? AND is_active = ?", tokenHash, refreshTokenHash, true)
	})
}

func (repo *refreshSessionRepository) FindActiveByRefreshHash(ctx context.Context, refreshTokenHash string) (*entity.RefreshSession, error) {
	return repo.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("refresh_token_hash = ? AND is_active = ?", refreshTokenHash, true)
	})
}

// Deactivate is a compare-and-set on is_active so only one caller wins.
func (repo *refreshSessionRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshSessionModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to deactivate refresh session")
	}

	return result.RowsAffected == 1, nil
}

func (repo *refreshSessionRepository) DeactivateAllByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.RefreshSessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to deactivate refresh sessions")
	}

	return nil
}

func (repo *refreshSessionRepository) first(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*entity.RefreshSession, error) {
	var m model.RefreshSessionModel
	if err := scope(repo.db.WithContext(ctx)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshSessionNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find refresh session")
	}

	return toRefreshSessionDomain(&m), nil
}
