// Package mail sends participants their private reveal links. Sends are
// rate-limited; participants without an email address are skipped and
// counted separately.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"github.com/elfworks/santa-api-go/pkg/models"
)

// Sender delivers a single message.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers messages over SMTP via gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender for the given SMTP endpoint.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

// LogSender logs messages instead of delivering them. Used when SMTP is
// not configured.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	slog.Info("mail delivery disabled, logging instead", "to", to, "subject", subject)
	return nil
}

// SenderFromEnv returns an SMTP sender when SMTP_HOST is set, otherwise a
// logging fallback.
func SenderFromEnv() Sender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return LogSender{}
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "santa@localhost"
	}

	return NewSMTPSender(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"), from)
}

// Dispatcher notifies a group's participants of their personal links.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	baseURL string
}

// NewDispatcher wraps a sender with an outbound rate limit of perMinute
// messages.
func NewDispatcher(sender Sender, perMinute int, baseURL string) *Dispatcher {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		baseURL: baseURL,
	}
}

// NotifyGroup sends each participant their reveal link. Participants with
// no email address, and those whose delivery fails, are counted as skipped.
// Only a cancelled context aborts the run.
func (d *Dispatcher) NotifyGroup(ctx context.Context, group *models.Group) (sent, skipped int, err error) {
	for _, p := range group.Participants {
		if p.Email == "" {
			skipped++
			continue
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return sent, skipped, err
		}

		link := fmt.Sprintf("%s/groups/%s/participant/%s", d.baseURL, group.Code, p.ID)
		subject := fmt.Sprintf("Your Secret Santa assignment for %s", group.Name)
		body := fmt.Sprintf(
			"Hi %s,\n\nYou are taking part in the gift exchange %q.\n"+
				"Open your private link to see who you are giving a gift to:\n\n%s\n\n"+
				"Keep it to yourself!\n",
			p.DisplayName(), group.Name, link,
		)

		if sendErr := d.sender.Send(p.Email, subject, body); sendErr != nil {
			slog.Warn("failed to send notification", "group", group.Code, "participant", p.ID, "error", sendErr)
			skipped++
			continue
		}
		sent++
	}
	return sent, skipped, nil
}
