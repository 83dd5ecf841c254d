package repository

import "context"

// TransactionManager runs multi-record writes atomically. Activation, reset
// and refresh rotation touch a user and its sessions together.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory returns repositories bound to the running transaction.
// Activities are not included: they may live in a different store.
type RepositoryFactory interface {
	UserRepo() UserRepository
	RefreshSessionRepo() RefreshSessionRepository
	AddressRepo() AddressRepository
}
