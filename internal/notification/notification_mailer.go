package notification

import (
	"context"

	"flexileave/internal/shared/config"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns nil when SMTP is not configured; the service then
// only stores in-app notifications.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
