package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/common/contracts"
)

// EventPublisher announces storefront events to the notification pipeline.
// Publishing is best effort: failures are logged and never fail the caller.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

type busEventPublisher struct {
	bus    aws_pkg.SNSPublisher
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

// NewEventPublisher publishes to topic on bus, which is either the SNS client
// (topic is an ARN) or the Kafka producer (topic is a Kafka topic).
func NewEventPublisher(bus aws_pkg.SNSPublisher, topic string, logger *zap.Logger) EventPublisher {
	return &busEventPublisher{bus: bus, topic: topic, logger: logger, now: time.Now}
}

func (p *busEventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	if p.bus == nil || p.topic == "" {
		p.logger.Warn("event bus not configured, skipping event", zap.String("event_type", eventType))
		return
	}

	body, err := json.Marshal(contracts.Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	if err := p.bus.Publish(ctx, p.topic, eventType, body); err != nil {
		p.logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.logger.Info("Published event", zap.String("event_type", eventType))
}
