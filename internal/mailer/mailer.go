package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer delivers outbound mail. The core treats delivery as best-effort:
// callers log failures and carry on.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTP creates a mailer for the given relay. Auth is skipped when
// username is empty (local relays).
func NewSMTP(host, port, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", host, port),
		auth: auth,
		from: from,
	}
}

// Send delivers a single plain-text message
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of a relay. Used in development
// when no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLog creates a mailer that only logs
func NewLog(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success
func (m *LogMailer) Send(to, subject, body string) error {
	m.logger.Info("Outbound mail (log only)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
