package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// MessageHandler processes one SQS message body. A non-nil error leaves the
// message on the queue so it is redelivered after the visibility timeout.
type MessageHandler = func(ctx context.Context, body string) error

// SQSConsumer long-polls a single queue.
type SQSConsumer struct {
	client            *sqs.Client
	queueURL          string
	logger            *zap.Logger
	waitSeconds       int32
	visibilitySeconds int32
	errorBackoff      time.Duration
}

func NewSQSConsumer(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:            sqs.NewFromConfig(cfg),
		queueURL:          queueURL,
		logger:            logger,
		waitSeconds:       20,
		visibilitySeconds: 60,
		errorBackoff:      5 * time.Second,
	}
}

// StartPolling blocks until ctx is cancelled.
func (c *SQSConsumer) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("sqs polling started", zap.String("queue_url", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("sqs polling stopped")
			return ctx.Err()
		default:
		}

		if err := c.pollOnce(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("sqs poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.errorBackoff):
			}
		}
	}
}

func (c *SQSConsumer) pollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     c.waitSeconds,
		VisibilityTimeout:   c.visibilitySeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range result.Messages {
		if msg.Body == nil {
			continue
		}
		if err := handler(ctx, *msg.Body); err != nil {
			c.logger.Error("message handling failed", zap.Stringp("message_id", msg.MessageId), zap.Error(err))
			continue
		}
		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      sdkaws.String(c.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			c.logger.Warn("failed to delete message", zap.Stringp("message_id", msg.MessageId), zap.Error(err))
		}
	}
	return nil
}

// GetQueueURL resolves a queue name to its URL.
func GetQueueURL(ctx context.Context, cfg sdkaws.Config, queueName string) (string, error) {
	out, err := sqs.NewFromConfig(cfg).GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: sdkaws.String(queueName)})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL: %w", err)
	}
	return sdkaws.ToString(out.QueueUrl), nil
}
