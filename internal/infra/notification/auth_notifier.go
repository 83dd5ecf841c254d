package notification

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"restapi/config"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

// ActivationPath is appended to the app URL to build activation links.
const ActivationPath = "/api/v1/auth/activate/"

const resetPath = "/reset-password/"

var templates = template.Must(template.New("notifications").Parse(`
{{define "activation.subject"}}User registered, Please activate your account{{end}}
{{define "activation.body"}}Hi {{.Name}},

Thanks for signing up to {{.AppName}}. Your activation code is {{.Token}}.
Activate your account here: {{.Link}}

The code expires at {{.ExpireAt}}.
{{end}}
{{define "activation.sms"}}{{.AppName}} activation code: {{.Token}}{{end}}
{{define "activated.subject"}}Your account is active{{end}}
{{define "activated.body"}}Hi {{.Name}},

Your {{.AppName}} account is now active. You can sign in with {{.Email}}.
{{end}}
{{define "reset.subject"}}Reset your password{{end}}
{{define "reset.body"}}Hi {{.Name}},

We received a request to reset your {{.AppName}} password. Use this link to choose a new one:
{{.Link}}

The link expires at {{.ExpireAt}}. If you did not ask for a reset, ignore this mail.
{{end}}
`))

type templateData struct {
	AppName  string
	Name     string
	Email    string
	Token    string
	Link     string
	ExpireAt string
}

type authNotifier struct {
	mailer  service.Mailer
	sms     service.SMSSender
	appURL  string
	appName string
}

// NewAuthNotifier renders the account lifecycle messages and hands them to the senders.
func NewAuthNotifier(cfg *config.Config, mailer service.Mailer, sms service.SMSSender) service.AuthNotifier {
	return &authNotifier{
		mailer:  mailer,
		sms:     sms,
		appURL:  strings.TrimRight(cfg.App.URL, "/"),
		appName: cfg.App.Name,
	}
}

// ActivationLink returns the public activation URL for token.
func ActivationLink(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + ActivationPath + token
}

func (n *authNotifier) SendActivationMail(ctx context.Context, user *entity.User) error {
	if user.Activation == nil {
		return errors.New("user has no activation token")
	}
	data := n.data(user)
	data.Token = user.Activation.Token
	data.Link = ActivationLink(n.appURL, user.Activation.Token)
	data.ExpireAt = user.Activation.ExpireAt.UTC().Format("2006-01-02 15:04 MST")

	return n.mail(ctx, user, "activation", data)
}

func (n *authNotifier) SendActivationSMS(ctx context.Context, user *entity.User) error {
	if user.Phone == "" {
		return nil
	}
	if user.Activation == nil {
		return errors.New("user has no activation token")
	}
	data := n.data(user)
	data.Token = user.Activation.Token

	body, err := render("activation.sms", data)
	if err != nil {
		return err
	}

	return n.sms.Send(ctx, user.Phone, body)
}

func (n *authNotifier) SendActivatedMail(ctx context.Context, user *entity.User) error {
	return n.mail(ctx, user, "activated", n.data(user))
}

func (n *authNotifier) SendResetMail(ctx context.Context, user *entity.User) error {
	if user.Reset == nil {
		return errors.New("user has no reset token")
	}
	data := n.data(user)
	data.Token = user.Reset.Token
	data.Link = n.appURL + resetPath + user.Reset.Token
	data.ExpireAt = user.Reset.ExpireAt.UTC().Format("2006-01-02 15:04 MST")

	return n.mail(ctx, user, "reset", data)
}

func (n *authNotifier) data(user *entity.User) templateData {
	name := user.FullName()
	if name == "" {
		name = user.Email
	}

	return templateData{AppName: n.appName, Name: name, Email: user.Email}
}

func (n *authNotifier) mail(ctx context.Context, user *entity.User, kind string, data templateData) error {
	subject, err := render(kind+".subject", data)
	if err != nil {
		return err
	}
	body, err := render(kind+".body", data)
	if err != nil {
		return err
	}

	return n.mailer.Send(ctx, &service.Mail{
		To:      user.Email,
		ToName:  user.FullName(),
		Subject: subject,
		Body:    body,
	})
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}

	return strings.TrimSpace(buf.String()), nil
}
