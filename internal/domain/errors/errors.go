package errors

import (
	"net/http"
	"strings"
	"unicode"

	"restapi/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int             // HTTP status code
	ErrorCode() string         // Error name rendered to clients, e.g. "InvalidCredentials"
	Message() string           // User-friendly error message
	Details() string           // Detailed error information (optional)
	FieldErrors() []FieldError // Per-field failures (optional)
}

// Locations a field error can point at.
const (
	LocationBody   = "body"
	LocationQuery  = "query"
	LocationParams = "params"
)

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field    string   `json:"field"`
	Location string   `json:"location"`
	Messages []string `json:"messages"`
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode    int
	errorCode   string
	message     string
	details     string
	fieldErrors []FieldError
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches errors carrying the same error code, so derived copies still match
// their predefined sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the error name
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// FieldErrors returns the per-field failures
func (e *BaseError) FieldErrors() []FieldError {
	return e.fieldErrors
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

// WithMessage replaces the user-facing message
func (e *BaseError) WithMessage(message string) *BaseError {
	clone := *e
	clone.message = message

	return &clone
}

// WithFieldErrors attaches per-field failures
func (e *BaseError) WithFieldErrors(fieldErrors ...FieldError) *BaseError {
	clone := *e
	clone.fieldErrors = append([]FieldError(nil), fieldErrors...)

	return &clone
}

// Predefined error types
var (
	ErrValidation = NewBaseError(
		http.StatusBadRequest,
		"ValidationError",
		"Validation Error",
		"",
	)

	ErrDuplicateKey = NewBaseError(
		http.StatusConflict,
		"DuplicateKey",
		"Validation Error",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"InvalidCredentials",
		"Invalid email or password",
		"",
	)

	ErrInvalidAuthorization = NewBaseError(
		http.StatusForbidden,
		"InvalidAuthorization",
		"Invalid authorization",
		"",
	)

	ErrInvalidAccess = NewBaseError(
		http.StatusForbidden,
		"InvalidAccess",
		"Invalid access!",
		"",
	)

	ErrNotActive = NewBaseError(
		http.StatusUnauthorized,
		"NotActive",
		"User not active, please check your registered email to activate",
		"",
	)

	ErrDeleted = NewBaseError(
		http.StatusUnauthorized,
		"Deleted",
		"Cannot login, please contact admin for more details",
		"",
	)

	ErrAlreadyActive = NewBaseError(
		http.StatusBadRequest,
		"AlreadyActive",
		"User already activated",
		"",
	)

	ErrInvalidOrExpiredToken = NewBaseError(
		http.StatusBadRequest,
		"InvalidOrExpiredToken",
		"Invalid or expired token",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusBadRequest,
		"InvalidToken",
		"Invalid token",
		"",
	)

	ErrEmailNotFound = NewBaseError(
		http.StatusBadRequest,
		"EmailNotFound",
		"Email not found",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"NotFound",
		"User not found",
		"",
	)

	ErrAddressNotFound = NewBaseError(
		http.StatusNotFound,
		"NotFound",
		"Address not found",
		"",
	)

	ErrActivityNotFound = NewBaseError(
		http.StatusNotFound,
		"NotFound",
		"Activity not found",
		"",
	)

	ErrOAuthFailed = NewBaseError(
		http.StatusUnauthorized,
		"OAuthFailed",
		"OAuth authentication failed",
		"",
	)

	ErrOAuthProviderUnsupported = NewBaseError(
		http.StatusNotFound,
		"NotFound",
		"OAuth provider not available",
		"",
	)

	ErrOAuthStateInvalid = NewBaseError(
		http.StatusBadRequest,
		"InvalidToken",
		"Invalid or expired OAuth state",
		"",
	)

	ErrTooManyRequests = NewBaseError(
		http.StatusTooManyRequests,
		"TooManyRequests",
		"Too many requests, please try again later",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"InternalError",
		"Password processing failed",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"InternalError",
		"Database transaction failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"InternalError",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NotFound",
		"Resource not found",
		"",
	)
)

// NewDuplicateKeyError builds the 409 reported when a unique field collides.
func NewDuplicateKeyError(field string) *BaseError {
	return ErrDuplicateKey.WithFieldErrors(FieldError{
		Field:    field,
		Location: LocationBody,
		Messages: []string{humanize(field) + " already exists"},
	})
}

// humanize turns "email" into "Email" and "firstName" into "First name".
func humanize(field string) string {
	if field == "" {
		return "Value"
	}

	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		case r == '_':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the error name
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DatabaseError"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// FieldErrors returns nil; database failures never point at an input field
func (e *DatabaseExecuteError) FieldErrors() []FieldError {
	return nil
}
