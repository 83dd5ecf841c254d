// Package context carries request-scoped values between the delivery and usecase layers.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	KeyRequestID ContextKey = "request_id"
	KeyLogger    ContextKey = "logger"
	KeyUserID    ContextKey = "user_id"

	// HeaderXRequestID is echoed back on every response.
	HeaderXRequestID = echo.HeaderXRequestID
)

// GetRequestID returns the request ID stored on c, or the one already written to the response.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return c.Response().Header().Get(HeaderXRequestID)
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// GetRequestIDFromContext returns "" when no request ID is attached.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetUserIDFromContext returns the authenticated user ID, or "" for anonymous requests.
func GetUserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyUserID).(string)

	return id
}

// WithUserID attaches the authenticated user ID and tags the request logger with it.
func WithUserID(ctx context.Context, userID string) context.Context {
	ctx = context.WithValue(ctx, KeyUserID, userID)
	if logger := GetLogger(ctx); logger != nil {
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", userID)))
	}

	return ctx
}

// GetLogger returns nil when no request logger is attached.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(KeyLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault falls back to fallback outside of a request.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}
