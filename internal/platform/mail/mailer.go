// Package mail sends account-lifecycle email (confirmation links and
// password-reset links) over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"

	"github.com/fastcontacts/contacts-api/internal/config"
)

// Mailer defines the outgoing mail operations the services depend on.
type Mailer interface {
	// SendConfirmation sends an email-verification message carrying the
	// given confirmation link.
	SendConfirmation(ctx context.Context, to, name, link string) error

	// SendPasswordReset sends a password-reset message carrying the given
	// reset link.
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

var confirmTmpl = template.Must(template.New("confirm").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>Thanks for signing up. Please confirm your email address by following this link:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>If you did not create this account, you can ignore this message.</p>
</body></html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>A password reset was requested for your account. Follow this link to choose a new password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request this, you can ignore this message.</p>
</body></html>`))

// SMTPMailer implements Mailer over an authenticated SMTP connection.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// Ensure SMTPMailer implements Mailer interface
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a Mailer for the configured SMTP server.
// The connection is established lazily on first send.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendConfirmation implements Mailer.SendConfirmation
func (m *SMTPMailer) SendConfirmation(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Confirm your email", confirmTmpl, name, link)
}

// SendPasswordReset implements Mailer.SendPasswordReset
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Reset your password", resetTmpl, name, link)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject string, tmpl *template.Template, name, link string) error {
	var body bytes.Buffer
	data := struct {
		Name string
		Link string
	}{Name: name, Link: link}

	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render mail template: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
