package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"restapi/config"
	"restapi/internal/delivery/api/response"
	deliverycontext "restapi/internal/delivery/context"
	domainerrors "restapi/internal/domain/errors"
	apperrors "restapi/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const internalErrorMessage = "Internal server error, please try again later"

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger     *slog.Logger
	withStack  bool
	stackLimit int
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger:     logger,
		withStack:  cfg.IsDevelopment(),
		stackLimit: cfg.Error.StackLimit,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, name, message, fieldErrors := m.classify(err)
	if status >= http.StatusInternalServerError {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Error("Unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("method", c.Request().Method),
		)
		// Do not expose internal details for 5xx errors
		message = internalErrorMessage
		fieldErrors = nil
	}

	_ = response.Error(c, status, name, message, fieldErrors, m.stack(err))
}

func (m *ErrorMiddleware) classify(err error) (int, string, string, []domainerrors.FieldError) {
	// Attempt to parse as AppError
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.FieldErrors()
	}

	// Check if it is an Echo HTTPError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		return httpErr.Code, statusName(httpErr.Code), message, nil
	}

	return http.StatusInternalServerError, domainerrors.ErrInternalError.ErrorCode(), internalErrorMessage, nil
}

func (m *ErrorMiddleware) stack(err error) []string {
	if !m.withStack {
		return nil
	}

	return apperrors.StackLines(err, m.stackLimit)
}

// statusName turns "Not Found" into "NotFound". Malformed input is a ValidationError.
func statusName(code int) string {
	if code == http.StatusBadRequest {
		return domainerrors.ErrValidation.ErrorCode()
	}

	return strings.ReplaceAll(http.StatusText(code), " ", "")
}
