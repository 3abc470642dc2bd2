// Package mailer delivers transactional e-mail such as activation links.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dmitrijs2005/fintab/internal/logging"
)

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Bytes renders msg as a plain-text RFC 5322 message.
func (m Message) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Text, "\n", "\r\n"))
	return []byte(b.String())
}

// SMTPSender relays through an SMTP server without authentication, which is
// how the local relay in development and the sidecar in production run.
type SMTPSender struct {
	addr     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(addr string) *SMTPSender {
	return &SMTPSender{addr: addr, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sendMail(s.addr, nil, envelope(msg.From), []string{envelope(msg.To)}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// envelope strips a display name: "Fintab <a@b.c>" becomes "a@b.c".
func envelope(addr string) string {
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		if j := strings.LastIndex(addr, ">"); j > i {
			return addr[i+1 : j]
		}
	}
	return strings.TrimSpace(addr)
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the envelope at info level. The body carries one-time links, so
// it is only written at debug level.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(ctx, "email not delivered, logging instead", "to", msg.To, "subject", msg.Subject)
	s.log.Debug(ctx, "undelivered email body", "to", msg.To, "text", msg.Text)
	return nil
}
