// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/query"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"
	"restapi/internal/infra/persistence/model"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user and its identities in one statement batch.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = newID()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	userM := fromUserDomain(user)
	for i := range user.Identities {
		identity := &user.Identities[i]
		if identity.ID == uuid.Nil {
			identity.ID = newID()
		}
		identity.UserID = user.ID
		identity.CreatedAt = now
		userM.Identities = append(userM.Identities, *fromIdentityDomain(identity))
	}

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return translateWriteError(err, "email", "failed to create user")
	}

	return nil
}

// Update writes every mutable column of the user.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND deleted = ?", user.ID, false).
		Updates(userUpdateColumns(userM))
	if result.Error != nil {
		return translateWriteError(result.Error, "email", "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// FindByID retrieves a live user by ID with identities.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.first(ctx, "find user by id", func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id = ? AND users.deleted = ?", id, false)
	})
}

// FindByEmail retrieves a live user by email.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.first(ctx, "find user by email", func(db *gorm.DB) *gorm.DB {
		return db.Where("users.email = ? AND users.deleted = ?", email, false)
	})
}

// FindAnyByEmail includes deleted users; a live match wins over deleted ones.
func (repo *userRepository) FindAnyByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.first(ctx, "find any user by email", func(db *gorm.DB) *gorm.DB {
		return db.Where("users.email = ?", email).Order("users.deleted ASC").Order("users.created_at DESC")
	})
}

// FindByIdentity includes deleted users so callers can refuse them explicitly.
func (repo *userRepository) FindByIdentity(ctx context.Context, provider, externalID string) (*entity.User, error) {
	return repo.first(ctx, "find user by identity", func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN user_identities ON user_identities.user_id = users.id").
			Where("user_identities.provider = ? AND user_identities.external_id = ?", provider, externalID)
	})
}

// FindByActivationToken locks the matching row when running inside a transaction.
func (repo *userRepository) FindByActivationToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	return repo.first(ctx, "find user by activation token", func(db *gorm.DB) *gorm.DB {
		return db.
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Table: clause.Table{Name: "users"}}).
			Where("users.activation_token = ? AND users.activation_expires_at >= ? AND users.deleted = ?", token, now, false)
	})
}

// FindByResetToken locks the matching row when running inside a transaction.
func (repo *userRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	return repo.first(ctx, "find user by reset token", func(db *gorm.DB) *gorm.DB {
		return db.
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Table: clause.Table{Name: "users"}}).
			Where("users.reset_token = ? AND users.reset_expires_at >= ? AND users.deleted = ?", token, now, false)
	})
}

// LinkIdentity attaches a provider identity to an existing user.
func (repo *userRepository) LinkIdentity(ctx context.Context, identity *entity.Identity) error {
	if identity.ID == uuid.Nil {
		identity.ID = newID()
	}
	identity.CreatedAt = time.Now()

	if err := repo.db.WithContext(ctx).Create(fromIdentityDomain(identity)).Error; err != nil {
		return translateWriteError(err, "services", "failed to link identity")
	}

	return nil
}

// List returns one page of live users.
func (repo *userRepository) List(ctx context.Context, q *query.ListQuery) ([]*entity.User, int64, error) {
	res := resources["users"]
	base := res.applyFilters(repo.db.WithContext(ctx).Model(&model.UserModel{}), q).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count users")
	}

	var models []*model.UserModel
	if err := res.applyPage(base, q).Find(&models).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(models))
	for _, m := range models {
		users = append(users, toUserDomain(m))
	}

	return users, total, nil
}

// SoftDelete flags the user deleted and records who did it.
func (repo *userRepository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": now,
			"deleted_by": deletedBy,
			"updated_at": now,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (repo *userRepository) first(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) (*entity.User, error) {
	var userM model.UserModel
	err := scope(repo.db.WithContext(ctx).Model(&model.UserModel{})).
		Preload("Identities").
		First(&userM).Error
	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to "+op)
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}
