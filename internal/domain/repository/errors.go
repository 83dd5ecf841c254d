package repository

import (
	"fmt"

	"restapi/internal/errors"
)

// ConstraintViolation is returned by storage adapters when a write collides
// with a uniqueness constraint. Field names the offending input field.
type ConstraintViolation struct {
	Field string
	Err   error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s", e.Field)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// AsConstraintViolation extracts a ConstraintViolation from err's chain.
func AsConstraintViolation(err error) (*ConstraintViolation, bool) {
	return errors.AsType[*ConstraintViolation](err)
}
