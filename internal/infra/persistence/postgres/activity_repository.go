package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/query"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"
	"restapi/internal/infra/persistence/model"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates the relational activity store.
func NewActivityRepository(db *gorm.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = newID()
	}
	now := time.Now()
	activity.CreatedAt, activity.UpdatedAt = now, now

	if err := repo.db.WithContext(ctx).Omit("User").Create(fromActivityDomain(activity)).Error; err != nil {
		return translateWriteError(err, "userId", "failed to record activity")
	}

	return nil
}

func (repo *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var m model.ActivityModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrActivityNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find activity")
	}

	return toActivityDomain(&m), nil
}

func (repo *activityRepository) List(ctx context.Context, userID *uuid.UUID, q *query.ListQuery) ([]*entity.Activity, int64, error) {
	res := resources["activities"]
	db := repo.db.WithContext(ctx).Model(&model.ActivityModel{})
	if userID != nil {
		db = db.Where(res.qualify("user_id")+" = ?", *userID)
	}
	base := res.applyFilters(db, q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count activities")
	}

	var models []*model.ActivityModel
	if err := res.applyPage(base, q).Find(&models).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list activities")
	}

	activities := make([]*entity.Activity, 0, len(models))
	for _, m := range models {
		activities = append(activities, toActivityDomain(m))
	}

	return activities, total, nil
}

func (repo *activityRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ActivityModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{"deleted": true, "updated_at": time.Now()})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete activity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrActivityNotFound
	}

	return nil
}
