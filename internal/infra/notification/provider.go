// Package notification delivers account mails and text messages.
package notification

import (
	"log/slog"

	"restapi/config"
	"restapi/internal/domain/constants"
	"restapi/internal/domain/service"
	"restapi/internal/errors"

	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewMailer selects the mail provider from configuration.
func NewMailer(params Params) (service.Mailer, error) {
	cfg := params.Config.Mail
	switch cfg.Provider {
	case constants.MailProviderSMTP:
		if cfg.Host == "" {
			return nil, errors.New("mail host is required for smtp provider")
		}

		return NewSMTPMailer(cfg)
	case constants.MailProviderBrevo:
		if cfg.APIKey == "" {
			return nil, errors.New("api key is required for brevo provider")
		}

		return NewBrevoMailer(cfg, params.Config.CircuitBreaker, params.Logger), nil
	case "", constants.MailProviderLog:
		return NewLogMailer(params.Logger), nil
	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}
}

// NewSMSSender selects the SMS provider from configuration.
func NewSMSSender(params Params) (service.SMSSender, error) {
	cfg := params.Config.SMS
	switch cfg.Provider {
	case constants.SMSProviderTwilio:
		if cfg.AccountSID == "" || cfg.AuthToken == "" {
			return nil, errors.New("account sid and auth token are required for twilio provider")
		}

		return NewTwilioSender(cfg, params.Config.CircuitBreaker, params.Logger), nil
	case "", constants.SMSProviderLog:
		return NewLogSMSSender(params.Logger), nil
	default:
		return nil, errors.Errorf("unknown sms provider: %s", cfg.Provider)
	}
}

// Module provides the notification FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewMailer,
		NewSMSSender,
		NewAuthNotifier,
	),
)
