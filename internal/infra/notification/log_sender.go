package notification

import (
	"context"
	"log/slog"

	"restapi/internal/domain/service"
)

// logMailer writes mails to the log instead of sending them. Used in development.
type logMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) service.Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, msg *service.Mail) error {
	m.logger.InfoContext(ctx, "[LogMailer] Mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)

	return nil
}

type logSMSSender struct {
	logger *slog.Logger
}

func NewLogSMSSender(logger *slog.Logger) service.SMSSender {
	return &logSMSSender{logger: logger}
}

func (s *logSMSSender) Send(ctx context.Context, to, body string) error {
	s.logger.InfoContext(ctx, "[LogSMS] Message",
		slog.String("to", to),
		slog.String("body", body),
	)

	return nil
}
