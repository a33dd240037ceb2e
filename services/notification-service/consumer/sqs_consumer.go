package consumer

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/coradis/storefront/services/notification-service/models"
	"github.com/coradis/storefront/services/notification-service/services"
)

// EventConsumer turns queue messages into notification deliveries.
type EventConsumer struct {
	service services.NotificationService
	logger  *zap.Logger
}

func NewEventConsumer(svc services.NotificationService, logger *zap.Logger) *EventConsumer {
	return &EventConsumer{service: svc, logger: logger}
}

// Source delivers raw message bodies; both the SQS poller and the Kafka
// consumer satisfy it.
type Source interface {
	StartPolling(ctx context.Context, handler func(ctx context.Context, body string) error) error
}

// Start polls until ctx is cancelled.
func (c *EventConsumer) Start(ctx context.Context, src Source) {
	if err := src.StartPolling(ctx, c.Handle); err != nil && ctx.Err() == nil {
		c.logger.Error("event consumer stopped", zap.Error(err))
	}
}

// snsEnvelope unwraps the SNS → SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// Handle processes one message body. Returning nil deletes the message, so
// unparseable bodies return nil to keep them from looping.
func (c *EventConsumer) Handle(ctx context.Context, body string) error {
	if body == "" {
		c.logger.Error("received empty SQS message body")
		return nil
	}

	raw := []byte(body)
	var envelope snsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.Error("failed to unmarshal SNS envelope", zap.Error(err))
		return nil
	}
	// raw delivery subscriptions carry the event directly
	if envelope.Message != "" {
		raw = []byte(envelope.Message)
	}

	var event models.Envelope
	if err := json.Unmarshal(raw, &event); err != nil || event.EventType == "" {
		c.logger.Error("failed to unmarshal event payload", zap.Error(err))
		return nil
	}

	if err := c.service.ProcessEvent(ctx, &event); err != nil {
		c.logger.Error("failed to process event",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}
