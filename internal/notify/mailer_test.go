package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/config"
)

func TestEnvelopeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IT Support <it@example.com>", "it@example.com"},
		{"helpdesk@example.com", "helpdesk@example.com"},
		{"NO DEPARTMENT EMAIL DEFINED <fallback@example.com>", "fallback@example.com"},
		{"broken <", "broken <"},
	}

	for _, tt := range tests {
		if got := envelopeAddress(tt.in); got != tt.want {
			t.Errorf("envelopeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewMailer_FallsBackToLogWithoutHost(t *testing.T) {
	mailer := NewMailer(config.MailConfig{}, zap.NewNop())
	if _, ok := mailer.(*logMailer); !ok {
		t.Fatalf("expected log mailer, got %T", mailer)
	}

	// The log mailer accepts anything without error.
	err := mailer.Send(context.Background(), Message{
		From:    "a@example.com",
		To:      []string{"b@example.com"},
		Subject: "hello",
	})
	if err != nil {
		t.Errorf("Send: %v", err)
	}
}

func TestNewMailer_UsesSMTPWithHost(t *testing.T) {
	mailer := NewMailer(config.MailConfig{Host: "smtp.example.com", Port: "25"}, zap.NewNop())
	if _, ok := mailer.(*smtpMailer); !ok {
		t.Fatalf("expected smtp mailer, got %T", mailer)
	}
}
