// Package mailer delivers the transactional e-mails sent by the queue
// consumer: address verification and password reset.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/config"
)

// Message is a single HTML e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New returns an SMTP mailer when a relay host is configured and a logging
// mailer otherwise.
func New(cfg config.SMTPConfig, log *slog.Logger) Mailer {
	if cfg.Host == "" {
		return LogMailer{Log: log}
	}
	return &SMTPMailer{Cfg: cfg}
}

// SMTPMailer sends through an authenticated SMTP relay with STARTTLS.
type SMTPMailer struct {
	Cfg config.SMTPConfig
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	addr := net.JoinHostPort(s.Cfg.Host, strconv.Itoa(s.Cfg.Port))
	var auth smtp.Auth
	if s.Cfg.User != "" {
		auth = smtp.PlainAuth("", s.Cfg.User, s.Cfg.Pass, s.Cfg.Host)
	}
	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(addr, auth, s.Cfg.From, []string{m.To}, compose(s.Cfg.From, m)) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func compose(from string, m Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.HTML, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer records messages in the log instead of sending them.
type LogMailer struct {
	Log *slog.Logger
}

func (l LogMailer) Send(_ context.Context, m Message) error {
	l.Log.Info("mail not sent, no SMTP relay configured", "to", m.To, "subject", m.Subject)
	return nil
}
