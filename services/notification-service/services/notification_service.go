package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/common/contracts"
	"github.com/coradis/storefront/services/notification-service/models"
	"github.com/coradis/storefront/services/notification-service/repository"
	"github.com/coradis/storefront/services/notification-service/sender"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const maxAttempts = 3

type NotificationService interface {
	ProcessEvent(ctx context.Context, env *models.Envelope) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

// MetricsRecorder is satisfied by *aws_pkg.MetricsClient.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
}

type Config struct {
	// ShopEmail receives contact form submissions.
	ShopEmail string
	// RetryBackoff is multiplied by the attempt number between retries.
	RetryBackoff time.Duration
}

// delivery is one rendered message bound for one recipient.
type delivery struct {
	eventID   string
	eventType string
	channel   string
	to        string
	subject   string
	body      string
}

type notificationService struct {
	repo      repository.NotificationRepository
	email     sender.EmailSender
	whatsapp  sender.WhatsAppSender
	templates *template.Template
	metrics   MetricsRecorder
	cfg       Config
	logger    *zap.Logger
	sleep     func(time.Duration)
}

func NewNotificationService(
	repo repository.NotificationRepository,
	email sender.EmailSender,
	whatsapp sender.WhatsAppSender,
	metrics MetricsRecorder,
	cfg Config,
	logger *zap.Logger,
) (NotificationService, error) {
	tmpls, err := template.New("notifications").Funcs(template.FuncMap{
		"fcfa":        FormatFCFA,
		"statusLabel": StatusLabel,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &notificationService{
		repo:      repo,
		email:     email,
		whatsapp:  whatsapp,
		templates: tmpls,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		sleep:     time.Sleep,
	}, nil
}

// ProcessEvent renders and delivers the messages an event calls for. Unknown
// event types and malformed payloads are dropped; a delivery that still fails
// after retries is returned so the queue redelivers the event. On redelivery,
// recipients already served under the same event id are not messaged again.
func (s *notificationService) ProcessEvent(ctx context.Context, env *models.Envelope) error {
	deliveries, err := s.plan(env)
	if err != nil {
		s.logger.Warn("dropping event", zap.String("event_type", env.EventType), zap.Error(err))
		return nil
	}

	var failed []error
	for _, d := range deliveries {
		if d.to == "" {
			s.logger.Warn("missing recipient, skipping",
				zap.String("channel", d.channel),
				zap.String("event", d.eventType),
			)
			continue
		}
		d.eventID = env.EventID
		if s.delivered(ctx, d) {
			s.logger.Info("already delivered, skipping",
				zap.String("event_id", d.eventID),
				zap.String("channel", d.channel),
			)
			continue
		}
		if err := s.sendWithRetry(ctx, d); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// delivered errs on the side of sending when the log cannot be read.
func (s *notificationService) delivered(ctx context.Context, d delivery) bool {
	if d.eventID == "" {
		return false
	}
	ok, err := s.repo.Delivered(ctx, d.eventID, d.channel, d.to)
	if err != nil {
		s.logger.Warn("failed to read delivery log", zap.String("event_id", d.eventID), zap.Error(err))
		return false
	}
	return ok
}

func (s *notificationService) plan(env *models.Envelope) ([]delivery, error) {
	switch env.EventType {
	case contracts.EventOTPRequested:
		var p contracts.OTPRequestedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return s.render(env.EventType, "otp_requested.tmpl", p, delivery{channel: models.ChannelWhatsApp, to: p.Phone})

	case contracts.EventOrderCreated, contracts.EventOrderStatusChanged:
		var p contracts.OrderEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return s.render(env.EventType, env.EventType+".tmpl", p, delivery{channel: models.ChannelWhatsApp, to: p.CustomerPhone})

	case contracts.EventReferralApplied:
		var p contracts.ReferralPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		referee, err := s.render(env.EventType, "referral_referee.tmpl", p, delivery{channel: models.ChannelWhatsApp, to: p.RefereePhone})
		if err != nil {
			return nil, err
		}
		referrer, err := s.render(env.EventType, "referral_referrer.tmpl", p, delivery{channel: models.ChannelWhatsApp, to: p.ReferrerPhone})
		if err != nil {
			return nil, err
		}
		return append(referee, referrer...), nil

	case contracts.EventContactReceived:
		var p contracts.ContactPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return s.render(env.EventType, "contact_received.tmpl", p, delivery{
			channel: models.ChannelEmail,
			to:      s.cfg.ShopEmail,
			subject: "[Coradis] Nouveau message : " + p.Subject,
		})
	}
	return nil, fmt.Errorf("unsupported event type: %s", env.EventType)
}

func (s *notificationService) render(eventType, name string, data interface{}, d delivery) ([]delivery, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("template render failed: %w", err)
	}
	d.eventType = eventType
	d.body = strings.TrimSpace(buf.String())
	return []delivery{d}, nil
}

func (s *notificationService) send(ctx context.Context, d delivery) (sender.SendResult, error) {
	switch d.channel {
	case models.ChannelEmail:
		return s.email.SendEmail(ctx, d.to, d.subject, d.body)
	case models.ChannelWhatsApp:
		return s.whatsapp.SendWhatsApp(ctx, d.to, d.body)
	}
	return sender.SendResult{}, fmt.Errorf("unknown channel %q", d.channel)
}

func (s *notificationService) sendWithRetry(ctx context.Context, d delivery) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(time.Duration(attempt) * s.cfg.RetryBackoff)
		}

		result, err := s.send(ctx, d)
		switch {
		case err == nil:
			s.record(ctx, d, models.StatusSent, "", attempt)
			s.count(ctx, aws_pkg.MetricNotificationsSent, d)
			s.logger.Info("notification sent",
				zap.String("event", d.eventType),
				zap.String("channel", d.channel),
				zap.String("message_id", result.MessageID),
			)
			return nil
		case errors.Is(err, sender.ErrNotConfigured):
			s.record(ctx, d, models.StatusSkipped, err.Error(), attempt)
			s.logger.Info("sender not configured, message not sent",
				zap.String("event", d.eventType),
				zap.String("channel", d.channel),
				zap.String("body", d.body),
			)
			return nil
		}

		lastErr = err
		s.record(ctx, d, models.StatusFailed, err.Error(), attempt)
		s.logger.Warn("send attempt failed",
			zap.String("channel", d.channel),
			zap.String("event", d.eventType),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	s.count(ctx, aws_pkg.MetricNotificationsFailed, d)
	return fmt.Errorf("%s via %s: %w", d.eventType, d.channel, lastErr)
}

func (s *notificationService) count(ctx context.Context, name string, d delivery) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(ctx, name, map[string]string{"Channel": d.channel, "Event": d.eventType}); err != nil {
		s.logger.Debug("failed to record metric", zap.String("metric", name), zap.Error(err))
	}
}

func (s *notificationService) record(ctx context.Context, d delivery, status, errMsg string, attempt int) {
	entry := &models.NotificationLog{
		EventID:    d.eventID,
		Recipient:  d.to,
		Type:       d.eventType,
		Channel:    d.channel,
		Status:     status,
		Error:      errMsg,
		RetryCount: attempt,
	}
	if err := s.repo.SaveLog(ctx, entry); err != nil {
		s.logger.Error("failed to save notification log", zap.Error(err))
	}
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	return s.repo.GetLogs(ctx, filter)
}

// FormatFCFA renders an amount as "12 500 FCFA".
func FormatFCFA(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " FCFA"
	if neg {
		out = "-" + out
	}
	return out
}

var statusLabels = map[string]string{
	contracts.OrderPending:    "En attente",
	contracts.OrderConfirmed:  "Confirmée",
	contracts.OrderInDelivery: "En cours de livraison",
	contracts.OrderDelivered:  "Livrée",
	contracts.OrderCancelled:  "Annulée",
}

func StatusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}
