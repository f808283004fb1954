// Package mail delivers transactional email.
// The only message the server sends today is the password reset code.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResetCodeMessage builds the password reset email for a user.
func ResetCodeMessage(to, code string, ttlMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Your password reset code",
		Body: fmt.Sprintf(
			"Your password reset code is: %s\n\n"+
				"It expires in %d minutes. If you did not request a reset, ignore this email.\n",
			code, ttlMinutes),
	}
}

// LogSender writes messages to the logger instead of delivering them.
// Default in development so resets work without an SMTP server.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("mail (log driver, not delivered)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// SMTPSender delivers messages through an SMTP server.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Send implements Sender. Uses PLAIN auth when a username is configured.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	addr := s.Host + ":" + s.Port

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, s.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
