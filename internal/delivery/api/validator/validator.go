// Package validator plugs go-playground/validator into echo and reports
// failures as ValidationError field errors.
package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const passwordSpecials = "!@#$%^&*"

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("password", validatePassword)

	return &Validator{validate: v}
}

// Validate checks i and converts failures into a domain ValidationError.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.WithStack(err)
	}

	locations := fieldLocations(i)
	fieldErrors := make([]domainerrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		location, ok := locations[fe.StructField()]
		if !ok {
			location = domainerrors.LocationBody
		}
		fieldErrors = append(fieldErrors, domainerrors.FieldError{
			Field:    fe.Field(),
			Location: location,
			Messages: []string{message(fe)},
		})
	}

	return domainerrors.ErrValidation.WithFieldErrors(fieldErrors...)
}

// validatePassword requires a lower-case letter, an upper-case letter, a digit,
// one of !@#$%^&*, at least six characters and at most 72 bytes.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 6 || len(password) > entity.MaxPasswordBytes {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	return lower && upper && digit && special
}

func message(fe validator.FieldError) string {
	field := fmt.Sprintf("%q", fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "password":
		return field + " must contain lower and upper case letters, a digit and one of " + passwordSpecials + ", with at least 6 characters and at most " + strconv.Itoa(entity.MaxPasswordBytes) + " bytes"
	case "oneof":
		return field + " must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "uuid":
		return field + " must be a valid id"
	default:
		return field + " is invalid"
	}
}

// fieldName reports fields by the name the client used.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "param", "query", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}

	return field.Name
}

// fieldLocations maps struct field names to where echo binds them from.
func fieldLocations(i any) map[string]string {
	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	locations := make(map[string]string, t.NumField())
	for idx := range t.NumField() {
		field := t.Field(idx)
		switch {
		case field.Tag.Get("param") != "":
			locations[field.Name] = domainerrors.LocationParams
		case field.Tag.Get("query") != "":
			locations[field.Name] = domainerrors.LocationQuery
		default:
			locations[field.Name] = domainerrors.LocationBody
		}
	}

	return locations
}
