package service

import (
	"context"

	"restapi/internal/domain/entity"
)

// Mail is a rendered outbound email.
type Mail struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

// SMSSender delivers text messages.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// AuthNotifier sends the account lifecycle messages of the auth flows.
type AuthNotifier interface {
	// SendActivationMail mails the activation code and link.
	SendActivationMail(ctx context.Context, user *entity.User) error

	// SendActivationSMS texts the activation code.
	SendActivationSMS(ctx context.Context, user *entity.User) error

	// SendActivatedMail confirms a completed activation.
	SendActivatedMail(ctx context.Context, user *entity.User) error

	// SendResetMail mails the password reset link.
	SendResetMail(ctx context.Context, user *entity.User) error
}
