package validator

import (
	"fmt"
	"strings"
	"testing"

	domainerrors "restapi/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Token    string `param:"token" validate:"omitempty,min=3"`
}

func TestValidator_Password(t *testing.T) {
	v := New()

	tests := []struct {
		password string
		valid    bool
	}{
		{password: "Aa1!aaaa", valid: true},
		{password: "Aa1!a", valid: false},
		{password: "aa1!aaaa", valid: false},
		{password: "AA1!AAAA", valid: false},
		{password: "Aaa!aaaa", valid: false},
		{password: "Aa1aaaaa", valid: false},
		{password: "Aa1!" + strings.Repeat("a", 68), valid: true},
		{password: "Aa1!" + strings.Repeat("a", 69), valid: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d bytes %.8s", len(tt.password), tt.password), func(t *testing.T) {
			err := v.Validate(&signupRequest{Email: "a@x.com", Password: tt.password})
			assert.Equal(t, tt.valid, err == nil, "got %v", err)
		})
	}
}

func TestValidator_FieldErrors(t *testing.T) {
	err := New().Validate(&signupRequest{Email: "nope", Password: "Aa1!aaaa", Token: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))

	byField := map[string]domainerrors.FieldError{}
	for _, fe := range appErr.FieldErrors() {
		byField[fe.Field] = fe
	}

	require.Contains(t, byField, "email")
	assert.Equal(t, domainerrors.LocationBody, byField["email"].Location)
	assert.Equal(t, []string{`"email" must be a valid email`}, byField["email"].Messages)

	require.Contains(t, byField, "token")
	assert.Equal(t, domainerrors.LocationParams, byField["token"].Location)
}
