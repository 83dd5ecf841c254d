package middleware

import (
	"log/slog"
	"strconv"

	deliverycontext "restapi/internal/delivery/context"
	domainerrors "restapi/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitMiddleware throttles requests per client IP.
type RateLimitMiddleware struct {
	limiter *limiter.Limiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware accepts a nil limiter, which disables throttling.
func NewRateLimitMiddleware(l *limiter.Limiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: l, logger: logger}
}

// Limit rejects a client with TooManyRequests once it exhausts its quota.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	if m.limiter == nil {
		return next
	}

	return func(c echo.Context) error {
		ctx := c.Request().Context()
		quota, err := m.limiter.Get(ctx, c.RealIP())
		if err != nil {
			// Fail open.
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Error("Rate limiter unavailable", slog.Any("error", err))

			return next(c)
		}

		header := c.Response().Header()
		header.Set(HeaderRateLimitLimit, strconv.FormatInt(quota.Limit, 10))
		header.Set(HeaderRateLimitRemaining, strconv.FormatInt(quota.Remaining, 10))
		header.Set(HeaderRateLimitReset, strconv.FormatInt(quota.Reset, 10))

		if quota.Reached {
			return errors.Wrapf(domainerrors.ErrTooManyRequests, "client %s", c.RealIP())
		}

		return next(c)
	}
}
