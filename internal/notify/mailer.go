// Package notify is the outbound email collaborator. The engine never sends
// mail itself; jobs hand a template payload to a Mailer.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Payload is the template data for one outbound message.
type Payload struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends a rendered payload.
type Mailer interface {
	Send(ctx context.Context, payload Payload) error
}

// SMTPMailer delivers through a plain SMTP relay (Mailpit in development).
type SMTPMailer struct {
	host string
	port int
	from string
}

// NewSMTPMailer configures an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, from: from}
}

// Send delivers the payload, honouring context cancellation before the dial.
func (m *SMTPMailer) Send(ctx context.Context, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(payload.To) == 0 {
		return fmt.Errorf("notify: no recipients")
	}
	msg := email.NewEmail()
	msg.From = m.from
	msg.To = payload.To
	msg.Subject = payload.Subject
	msg.Text = []byte(payload.Body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if err := msg.Send(addr, auth); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}
