package backend

import (
	"fmt"

	"inventoritoko/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends reset tokens through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// SendResetToken mails the token to the account owner.
func (m *SMTPMailer) SendResetToken(to, token string) error {
	if err := m.dialer.DialAndSend(resetMessage(m.from, to, token)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func resetMessage(from, to, token string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset password Inventori Toko")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Gunakan token berikut untuk mengatur ulang password Anda:\n\n%s\n\nToken berlaku selama 1 jam.\n", token))
	return msg
}
