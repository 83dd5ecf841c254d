package postgres

import (
	"context"

	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"

	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// txRepositories binds every repository to the same *gorm.DB transaction.
type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) UserRepo() repository.UserRepository {
	return NewUserRepository(r.tx)
}

func (r txRepositories) RefreshSessionRepo() repository.RefreshSessionRepository {
	return NewRefreshSessionRepository(r.tx)
}

func (r txRepositories) AddressRepo() repository.AddressRepository {
	return NewAddressRepository(r.tx)
}

func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise. Errors from
// fn are returned untouched so callers can match domain errors.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	var fnErr error
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(txRepositories{tx: tx})

		return fnErr
	})
	switch {
	case fnErr != nil:
		return fnErr
	case err != nil:
		return errors.Wrap(domainerrors.ErrTransactionFailed.WithDetails(err.Error()), "commit")
	}

	return nil
}
