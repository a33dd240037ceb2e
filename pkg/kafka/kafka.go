// Package kafka carries storefront events over Kafka for deployments that run
// a broker instead of SNS/SQS.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventTypeHeader = "event_type"

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes one message per event. It has the same shape as the SNS
// publisher so either can back the storefront event publisher; the topic
// argument names a Kafka topic here.
type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}}
}

func (p *Producer) Publish(ctx context.Context, topic, eventType string, message []byte) error {
	if topic == "" {
		return errors.New("empty kafka topic")
	}
	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(eventType),
		Value:   message,
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(eventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group. A message is committed
// once the handler accepts it or its attempts are exhausted.
type Consumer struct {
	reader   messageReader
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1e6,
			MaxWait:  time.Second,
		}),
		attempts: 3,
		backoff:  2 * time.Second,
		logger:   logger,
	}
}

// StartPolling blocks until ctx is cancelled or the reader fails.
func (c *Consumer) StartPolling(ctx context.Context, handler func(ctx context.Context, body string) error) error {
	defer c.reader.Close()
	c.logger.Info("kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch failed: %w", err)
		}

		c.handle(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("kafka commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler func(ctx context.Context, body string) error) {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err := handler(ctx, string(msg.Value))
		if err == nil {
			return
		}
		c.logger.Warn("kafka message handler failed",
			zap.Int("attempt", attempt),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	c.logger.Error("giving up on kafka message", zap.Int64("offset", msg.Offset), zap.Int("partition", msg.Partition))
}
