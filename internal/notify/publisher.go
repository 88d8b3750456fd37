package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/infrastructure/kafka"
)

// KafkaPublisher fans notifications out on the broker. Delivery is
// fire-and-forget: no ordering across topics, no backpressure.
type KafkaPublisher struct {
	producer kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(producer kafka.Producer, topic string, l *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: l}
}

func (p *KafkaPublisher) PublishChange(ctx context.Context, msg ChangeMessage) error {
	return p.publish(ctx, msg.Type, msg)
}

func (p *KafkaPublisher) PublishWebhook(ctx context.Context, env WebhookEnvelope) error {
	return p.publish(ctx, env.Type, env)
}

func (p *KafkaPublisher) publish(ctx context.Context, kind Kind, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s notification: %w", kind, err)
	}
	if err := p.producer.Produce(ctx, topicFor(kind, p.topic), payload); err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", kind, err)
	}
	p.logger.Debug("Notification published", zap.String("kind", string(kind)))
	return nil
}
