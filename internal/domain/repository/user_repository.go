// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// Reads skip soft-deleted users unless the method says otherwise.
type UserRepository interface {
	// Create persists a new user together with its identities.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user, including its activation and reset tokens.
	Update(ctx context.Context, user *entity.User) error

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a non-deleted user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindAnyByEmail also returns soft-deleted users, preferring a live one.
	FindAnyByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByIdentity retrieves the user linked to a provider identity, deleted or not.
	FindByIdentity(ctx context.Context, provider, externalID string) (*entity.User, error)

	// FindByActivationToken retrieves the user holding an unexpired activation token.
	// The row is locked when called inside a transaction.
	FindByActivationToken(ctx context.Context, token string, now time.Time) (*entity.User, error)

	// FindByResetToken retrieves the user holding an unexpired reset token.
	// The row is locked when called inside a transaction.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)

	// LinkIdentity attaches a provider identity to a user.
	LinkIdentity(ctx context.Context, identity *entity.Identity) error

	// List returns one page of users and the total matching count.
	List(ctx context.Context, q *query.ListQuery) ([]*entity.User, int64, error)

	// SoftDelete marks the user deleted.
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
}
