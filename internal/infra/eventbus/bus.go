// Package eventbus dispatches domain events to in-process subscribers.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"

	"go.uber.org/fx"
)

// Bus runs every handler on its own goroutine. Handlers receive a context
// detached from the request so they outlive it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]service.EventHandler
	wg       sync.WaitGroup
	logger   *slog.Logger
}

type Params struct {
	fx.In
	fx.Lifecycle

	Logger *slog.Logger
}

// New creates the bus and drains in-flight handlers on shutdown.
func New(params Params) service.EventBus {
	bus := NewBus(params.Logger)

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Wait(ctx)
		},
	})

	return bus
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{handlers: map[string][]service.EventHandler{}, logger: logger}
}

func (b *Bus) Subscribe(name string, handler service.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) Publish(ctx context.Context, event entity.Event) {
	b.mu.RLock()
	handlers := append([]service.EventHandler(nil), b.handlers[event.Name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.ErrorContext(detached, "Event handler panicked",
						slog.String("event", event.Name),
						slog.Any("panic", r),
					)
				}
			}()

			handler(detached, event)
		}()
	}
}

// Wait blocks until running handlers finish or ctx is done.
func (b *Bus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event handlers still running at shutdown")

		return ctx.Err()
	}
}
