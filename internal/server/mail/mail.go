// Package mail delivers the out-of-band messages that carry validation
// tokens to account owners.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
	// Token is the credential Body carries, if any. It is masked wherever
	// the message is logged.
	Token string
}

// redactedBody returns Body with Token shortened.
func (m Message) redactedBody() string {
	if m.Token == "" {
		return m.Body
	}
	return strings.ReplaceAll(m.Body, m.Token, common.ShortToken(m.Token))
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer sends plain text mail through an SMTP relay.
type SMTPMailer struct {
	from string
	send func(*gomail.Message) error
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	d := gomail.NewDialer(host, port, user, password)
	return &SMTPMailer{from: from, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, "taskhub"))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.send(m)
}

// LogMailer writes mail to the debug log instead of sending it. Used when no SMTP
// host is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{log: l.With("module", "mail")}
}

func (l *LogMailer) Send(ctx context.Context, m Message) error {
	l.log.Debug(ctx, "mail not sent, smtp disabled", "to", m.To, "subject", m.Subject, "body", m.redactedBody())
	return nil
}

// FromConfig picks the SMTP mailer when host is set and the log mailer otherwise.
func FromConfig(host string, port int, user, password, from string, l logging.Logger) Mailer {
	if host == "" {
		return NewLogMailer(l)
	}
	return NewSMTPMailer(host, port, user, password, from)
}

const (
	ConfirmSubject = "Confirm your taskhub account"
	ResetSubject   = "Reset your taskhub password"
)

func ConfirmBody(token string, validity time.Duration) string {
	return fmt.Sprintf("Welcome to taskhub.\n\nConfirm your account with:\n\n    confirm %s\n\nThe code expires in %s.\n", token, validity)
}

func ResetBody(token string, validity time.Duration) string {
	return fmt.Sprintf("A password reset was requested for your taskhub account.\n\nReset it with:\n\n    reset %s\n\nThe code expires in %s. Ignore this message if you did not ask for it.\n", token, validity)
}
