// Package notify delivers lifecycle emails. The SMTP notifier is the
// production implementation; the logging notifier stands in during
// development so codes still reach the operator via the logs.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/boutell/sassypants/internal/core/domain"
	"github.com/boutell/sassypants/internal/core/port"
	"github.com/boutell/sassypants/internal/infra/config"
	"github.com/boutell/sassypants/internal/infra/logger"
)

// SMTPNotifier sends lifecycle emails over plain SMTP.
type SMTPNotifier struct {
	cfg     config.SMTPSettings
	service string
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier constructs a notifier delivering through the configured
// SMTP relay.
func NewSMTPNotifier(cfg config.SMTPSettings, service string) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, service: service, send: smtp.SendMail}
}

// Send renders the template for the notification kind and delivers it. An
// error is fatal to the triggering request; the engine never retries.
func (n *SMTPNotifier) Send(_ context.Context, notification domain.Notification) error {
	subject, err := Subject(notification.Kind, n.service)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	params := mailParams{
		Name:    notification.RecipientName,
		Service: n.service,
		URL:     notification.URL,
	}
	if err := mailTemplates.ExecuteTemplate(&body, string(notification.Kind), params); err != nil {
		return fmt.Errorf("render %s email: %w", notification.Kind, err)
	}

	msg := buildMessage(
		fmt.Sprintf("%q <%s>", n.cfg.FromName, n.cfg.FromEmail),
		fmt.Sprintf("%q <%s>", notification.RecipientName, notification.RecipientEmail),
		subject,
		body.String(),
	)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.FromEmail, []string{notification.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("send %s email: %w", notification.Kind, err)
	}

	return nil
}

// Subject returns the subject line for a notification kind.
func Subject(kind domain.NotificationKind, service string) (string, error) {
	switch kind {
	case domain.NotificationConfirm:
		return fmt.Sprintf("Confirm your account on %s", service), nil
	case domain.NotificationExistingAccount:
		return fmt.Sprintf("You already have an account on %s", service), nil
	case domain.NotificationReset:
		return fmt.Sprintf("Resetting your password on %s", service), nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", kind)
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(msg.String())
}

// LoggingNotifier records notifications instead of delivering them, for
// development environments without an SMTP relay.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier constructs a notifier backed by structured logging.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingNotifier{logger: log}
}

// Send logs the notification with the recipient masked. The URL is logged in
// full so the embedded code stays usable during development.
func (n *LoggingNotifier) Send(_ context.Context, notification domain.Notification) error {
	n.logger.Info("email notification",
		zap.String("kind", string(notification.Kind)),
		zap.String("recipient", logger.MaskEmail(notification.RecipientEmail)),
		zap.String("url", notification.URL),
	)
	return nil
}

var (
	_ port.Notifier = (*SMTPNotifier)(nil)
	_ port.Notifier = (*LoggingNotifier)(nil)
)
