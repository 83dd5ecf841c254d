package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"restapi/internal/domain/service"

	"github.com/pkg/errors"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// goCloudPublisher sends events to any Go CDK topic URL, e.g. "mem://activities"
// or "gcppubsub://projects/p/topics/t".
type goCloudPublisher struct {
	topic  *pubsub.Topic
	logger *slog.Logger
}

// NewGoCloudPublisher opens the topic named by topicURL.
func NewGoCloudPublisher(ctx context.Context, topicURL string, logger *slog.Logger) (service.EventPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open topic %s", topicURL)
	}

	return &goCloudPublisher{topic: topic, logger: logger}, nil
}

func (p *goCloudPublisher) PublishActivityEvent(ctx context.Context, event *service.ActivityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := p.topic.Send(ctx, &pubsub.Message{Body: data, Metadata: eventAttributes(event)}); err != nil {
		return errors.Wrap(err, "failed to send activity event")
	}

	p.logger.Debug("[GoCloud] Event published", slog.String("activity_id", event.ActivityID))

	return nil
}

func (p *goCloudPublisher) Close() error {
	return errors.WithStack(p.topic.Shutdown(context.Background()))
}
