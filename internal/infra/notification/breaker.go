package notification

import (
	"log/slog"

	"restapi/config"

	"github.com/sony/gobreaker"
)

// newBreaker trips after MaxFailures consecutive failures and stays open for OpenInterval.
func newBreaker(name string, cfg *config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := uint32(5)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
	}
	if cfg != nil {
		if cfg.MaxFailures > 0 {
			maxFailures = cfg.MaxFailures
		}
		settings.Timeout = cfg.OpenInterval
	}
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= maxFailures
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("Circuit breaker state changed",
			slog.String("name", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}

	return gobreaker.NewCircuitBreaker(settings)
}
