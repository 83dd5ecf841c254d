package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"restapi/config"
	"restapi/internal/domain/service"
	"restapi/internal/errors"

	"github.com/sony/gobreaker"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

// brevoMailer sends transactional mail through the Brevo HTTP API.
type brevoMailer struct {
	url        string
	apiKey     string
	sender     brevoContact
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewBrevoMailer(cfg *config.MailConfig, cb *config.CircuitBreakerConfig, logger *slog.Logger) service.Mailer {
	url := cfg.APIURL
	if url == "" {
		url = defaultBrevoURL
	}

	return &brevoMailer{
		url:        url,
		apiKey:     cfg.APIKey,
		sender:     brevoContact{Email: cfg.From, Name: cfg.FromName},
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker("brevo", cb, logger),
	}
}

func (m *brevoMailer) Send(ctx context.Context, msg *service.Mail) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      m.sender,
		To:          []brevoContact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		TextContent: msg.Body,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = m.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("api-key", m.apiKey)

		return nil, doRequest(m.httpClient, req)
	})
	if err != nil {
		return errors.Wrap(err, "failed to send mail through brevo")
	}

	return nil
}

// doRequest fails on transport errors and non-2xx answers.
func doRequest(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return errors.Errorf("provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
