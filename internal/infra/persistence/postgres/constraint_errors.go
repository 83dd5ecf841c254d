package postgres

import (
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/errors"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// constraintFields maps unique constraints and indexes to the input field they guard.
var constraintFields = map[string]string{
	"users_email_key":                          "email",
	"users_phone_key":                          "phone",
	"user_identities_provider_external_id_key": "services",
	"refresh_sessions_refresh_token_hash_key":  "refreshToken",
}

// translateWriteError converts driver errors raised by a write into domain
// errors. Unique violations become repository.ConstraintViolation naming the
// offending field; fallbackField is used when the constraint is unknown.
func translateWriteError(err error, fallbackField, details string) error {
	if err == nil {
		return nil
	}

	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &repository.ConstraintViolation{Field: constraintField(pgErr.ConstraintName, fallbackField), Err: err}
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation:
			return domainerrors.ErrValidation.WithDetails(pgErr.Message)
		}
	}

	if isUniqueConstraintViolation(err) {
		return &repository.ConstraintViolation{Field: fallbackField, Err: err}
	}
	if isForeignKeyConstraintViolation(err) || isCheckConstraintViolation(err) {
		return domainerrors.ErrValidation.WithDetails(details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func constraintField(constraint, fallback string) string {
	if field, ok := constraintFields[constraint]; ok {
		return field
	}

	return fallback
}

// Helper functions for GORM-translated error checking
func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isCheckConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated)
}
