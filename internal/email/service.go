// Package email mails generated reports to the clinic's recipients over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-ledger/internal/config"
)

var ErrNoRecipients = errors.New("no export recipients configured")

// Attachment is an in-memory file.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service interface {
	SendExport(ctx context.Context, to []string, subject, body string, file Attachment) error
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from    string
	sender  Sender
	timeout time.Duration
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return NewService(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

func NewService(from string, sender Sender) Service {
	return &smtpService{from: from, sender: sender, timeout: 30 * time.Second}
}

func (s *smtpService) SendExport(ctx context.Context, to []string, subject, body string, file Attachment) error {
	recipients := cleanAddrs(to)
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.Attach(file.Name,
		gomail.SetHeader(map[string][]string{"Content-Type": {file.ContentType}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(file.Data)
			return err
		}),
	)

	done := make(chan error, 1)
	go func() {
		done <- s.sender.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send export mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return context.DeadlineExceeded
	}
}

func cleanAddrs(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
