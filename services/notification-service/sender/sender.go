package sender

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by a sender whose credentials are missing.
// Deliveries through it are recorded as skipped rather than failed.
var ErrNotConfigured = errors.New("sender not configured")

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, msg string) (SendResult, error)
}
