package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"restapi/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	localPushTimeout      = 5 * time.Second
	localPushSubscription = "projects/local/subscriptions/activities-push"
)

// localHTTPPublisher posts activities to an HTTP endpoint in the Pub/Sub push
// format, so a consumer can be developed without a broker.
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushEnvelope is the body Cloud Pub/Sub sends to push subscribers.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		OrderingKey string            `json:"orderingKey,omitempty"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: localPushTimeout},
		logger:     logger,
	}
}

func newPushEnvelope(event *service.ActivityEvent, data []byte) PushEnvelope {
	envelope := PushEnvelope{Subscription: localPushSubscription}
	envelope.Message.Data = base64.StdEncoding.EncodeToString(data)
	envelope.Message.Attributes = eventAttributes(event)
	envelope.Message.MessageID = event.ActivityID
	envelope.Message.OrderingKey = event.UserID
	envelope.Message.PublishTime = time.Now().UTC().Format(time.RFC3339Nano)

	return envelope
}

func (p *localHTTPPublisher) PublishActivityEvent(ctx context.Context, event *service.ActivityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}
	body, err := json.Marshal(newPushEnvelope(event, data))
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.RequestID != "" {
		req.Header.Set("X-Request-Id", event.RequestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "push activity %s", event.ActivityID)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("push endpoint returned status %d for activity %s", resp.StatusCode, event.ActivityID)
	}

	p.logger.Debug("[LocalPubSub] Activity pushed",
		slog.String("endpoint", p.endpoint),
		slog.String("activity_id", event.ActivityID),
	)

	return nil
}

func (p *localHTTPPublisher) Close() error {
	p.httpClient.CloseIdleConnections()

	return nil
}
