// Package pubsub forwards recorded activities to an external message system.
package pubsub

import (
	"context"
	"log/slog"

	"restapi/config"
	"restapi/internal/domain/constants"
	"restapi/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopPublisher is used when forwarding is disabled.
type noopPublisher struct {
	logger *slog.Logger
}

func (p *noopPublisher) PublishActivityEvent(_ context.Context, event *service.ActivityEvent) error {
	p.logger.Debug("[NoopPubSub] Event publishing disabled, skipping",
		slog.String("activity_id", event.ActivityID),
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher creates an EventPublisher based on configuration
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" || cfg.Provider == constants.PubSubProviderNoop {
		logger.Info("PubSub not configured, using no-op publisher")

		return &noopPublisher{logger: logger}, nil
	}

	var publisher service.EventPublisher
	var err error

	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, logger)

	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		publisher, err = NewGooglePubSubPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}

	case constants.PubSubProviderKafka:
		if len(cfg.Brokers) == 0 {
			return nil, errors.New("brokers are required for kafka provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for kafka provider")
		}
		logger.Info("Using Kafka publisher",
			slog.Any("brokers", cfg.Brokers),
			slog.String("topic", cfg.TopicID),
		)

		publisher = NewKafkaPublisher(cfg.Brokers, cfg.TopicID, logger)

	case constants.PubSubProviderGoCloud:
		if cfg.TopicURL == "" {
			return nil, errors.New("topic URL is required for gocloud provider")
		}
		logger.Info("Using Go CDK publisher", slog.String("topic_url", cfg.TopicURL))

		publisher, err = NewGoCloudPublisher(params.Ctx, cfg.TopicURL, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// eventAttributes are attached to every message for filtering and tracing.
func eventAttributes(event *service.ActivityEvent) map[string]string {
	attributes := map[string]string{
		"activity_id": event.ActivityID,
		"activity":    event.Activity,
		"module":      event.Module,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
