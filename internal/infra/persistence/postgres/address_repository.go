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

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

func (repo *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	if address.ID == uuid.Nil {
		address.ID = newID()
	}
	now := time.Now()
	address.CreatedAt, address.UpdatedAt = now, now

	if err := repo.db.WithContext(ctx).Omit("User").Create(fromAddressDomain(address)).Error; err != nil {
		return translateWriteError(err, "userId", "failed to create address")
	}

	return nil
}

func (repo *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	address.UpdatedAt = time.Now()
	m := fromAddressDomain(address)

	result := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("id = ? AND deleted = ?", address.ID, false).
		Updates(map[string]any{
			"street":     m.Street,
			"area":       m.Area,
			"city":       m.City,
			"state":      m.State,
			"landmark":   m.Landmark,
			"pincode":    m.Pincode,
			"lat":        m.Lat,
			"long":       m.Long,
			"tag":        m.Tag,
			"updated_at": m.UpdatedAt,
		})
	if result.Error != nil {
		return translateWriteError(result.Error, "userId", "failed to update address")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAddressNotFound
	}

	return nil
}

func (repo *addressRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	var m model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAddressNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find address")
	}

	return toAddressDomain(&m), nil
}

func (repo *addressRepository) List(ctx context.Context, ownerID *uuid.UUID, q *query.ListQuery) ([]*entity.Address, int64, error) {
	res := resources["addresses"]
	db := repo.db.WithContext(ctx).Model(&model.AddressModel{})
	if ownerID != nil {
		db = db.Where(res.qualify("user_id")+" = ?", *ownerID)
	}
	base := res.applyFilters(db, q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count addresses")
	}

	var models []*model.AddressModel
	if err := res.applyPage(base, q).Find(&models).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list addresses")
	}

	addresses := make([]*entity.Address, 0, len(models))
	for _, m := range models {
		addresses = append(addresses, toAddressDomain(m))
	}

	return addresses, total, nil
}

func (repo *addressRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{"deleted": true, "updated_at": time.Now()})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete address")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAddressNotFound
	}

	return nil
}
