package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/boutell/sassypants/internal/core/domain"
	"github.com/boutell/sassypants/internal/infra/config"
)

func TestSMTPNotifierSend(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)

	notifier := NewSMTPNotifier(config.SMTPSettings{
		Host:      "mail.example.com",
		Port:      587,
		FromName:  "Example",
		FromEmail: "noreply@example.com",
	}, "Example Service")
	notifier.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := notifier.Send(context.Background(), domain.Notification{
		Kind:           domain.NotificationConfirm,
		RecipientName:  "Ann",
		RecipientEmail: "ann@example.com",
		URL:            "https://example.com/confirm/abc",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotAddr != "mail.example.com:587" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" {
		t.Fatalf("unexpected envelope sender %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "ann@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Confirm your account on Example Service") {
		t.Fatalf("missing subject in message:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "https://example.com/confirm/abc") {
		t.Fatalf("missing confirmation link in message:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "Hi Ann,") {
		t.Fatalf("missing greeting in message:\n%s", gotMsg)
	}
}

func TestSubjects(t *testing.T) {
	cases := map[domain.NotificationKind]string{
		domain.NotificationConfirm:         "Confirm your account on svc",
		domain.NotificationExistingAccount: "You already have an account on svc",
		domain.NotificationReset:           "Resetting your password on svc",
	}

	for kind, want := range cases {
		got, err := Subject(kind, "svc")
		if err != nil {
			t.Fatalf("Subject(%q) returned error: %v", kind, err)
		}
		if got != want {
			t.Errorf("Subject(%q) = %q, want %q", kind, got, want)
		}
	}

	if _, err := Subject(domain.NotificationKind("bogus"), "svc"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestEveryKindHasTemplate(t *testing.T) {
	for _, kind := range []domain.NotificationKind{
		domain.NotificationConfirm,
		domain.NotificationExistingAccount,
		domain.NotificationReset,
	} {
		if mailTemplates.Lookup(string(kind)) == nil {
			t.Errorf("no template registered for kind %q", kind)
		}
	}
}

func TestLoggingNotifierSend(t *testing.T) {
	notifier := NewLoggingNotifier(nil)

	err := notifier.Send(context.Background(), domain.Notification{
		Kind:           domain.NotificationReset,
		RecipientName:  "Ann",
		RecipientEmail: "ann@example.com",
		URL:            "https://example.com/reset/abc",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
}
