package notification

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"restapi/config"
	"restapi/internal/domain/service"
	"restapi/internal/errors"

	"github.com/sony/gobreaker"
)

const defaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"

// twilioSender posts messages to the Twilio Messages API.
type twilioSender struct {
	endpoint   string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewTwilioSender(cfg *config.SMSConfig, cb *config.CircuitBreakerConfig, logger *slog.Logger) service.SMSSender {
	base := cfg.APIURL
	if base == "" {
		base = defaultTwilioBaseURL
	}

	return &twilioSender{
		endpoint:   strings.TrimRight(base, "/") + "/Accounts/" + url.PathEscape(cfg.AccountSID) + "/Messages.json",
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker("twilio", cb, logger),
	}
}

func (s *twilioSender) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	_, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(s.accountSID, s.authToken)

		return nil, doRequest(s.httpClient, req)
	})
	if err != nil {
		return errors.Wrap(err, "failed to send sms through twilio")
	}

	return nil
}
