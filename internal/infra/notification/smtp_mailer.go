package notification

import (
	"context"

	"restapi/config"
	"restapi/internal/domain/service"
	"restapi/internal/errors"

	"github.com/wneessen/go-mail"
)

type smtpMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPMailer sends mail through an SMTP relay, upgrading to TLS when offered.
func NewSMTPMailer(cfg *config.MailConfig) (service.Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create SMTP client")
	}

	return &smtpMailer{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg *service.Mail) error {
	message := mail.NewMsg()
	if err := message.FromFormat(m.fromName, m.from); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if err := message.AddToFormat(msg.ToName, msg.To); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return errors.Wrap(err, "failed to send mail over SMTP")
	}

	return nil
}
