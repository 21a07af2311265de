package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/pkg/kafka"
	"github.com/careconnect/booking-service/pkg/logger"
	"github.com/careconnect/booking-service/pkg/retry"
)

// Notifier publishes notification events for downstream delivery.
// Every call is fire-and-forget from the caller's point of view: services
// log and swallow notifier errors, they never fail an operation over one.
type Notifier interface {
	Notify(ctx context.Context, notification *domain.Notification) error
	Close() error
}

// KafkaNotifier implements Notifier on a Kafka topic
type KafkaNotifier struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
	retrier     *retry.Retrier
	dlq         retry.DLQPublisher
}

// NotifierConfig contains configuration for the Kafka notifier
type NotifierConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaNotifier creates a new Kafka notifier
func NewKafkaNotifier(ctx context.Context, cfg *NotifierConfig) (*KafkaNotifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notifier config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "notification-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "booking-service"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "booking-service-notifier"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaNotifier{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
		retrier: retry.New(&retry.Config{
			MaxRetries:      2,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		}),
		dlq: retry.NewKafkaDLQPublisher(
			&retry.KafkaProducerAdapter{Producer: producer},
			&retry.DLQConfig{Source: serviceName},
		),
	}, nil
}

// Notify publishes one notification event
func (n *KafkaNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.OccurredAt.IsZero() {
		notification.OccurredAt = time.Now()
	}

	value, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	msg := &kafka.Message{
		Topic: n.topic,
		Key:   notification.RecipientID,
		Value: value,
		Headers: map[string]string{
			"event_type":   string(notification.Type),
			"event_id":     notification.ID,
			"source":       n.serviceName,
			"content_type": "application/json",
		},
		Timestamp: notification.OccurredAt,
	}

	started := time.Now()
	result := n.retrier.Do(ctx, func(ctx context.Context) error {
		return n.producer.Produce(ctx, msg)
	})
	if result.Err == nil {
		return nil
	}

	// Broker kept refusing the record; park it on the DLQ topic so the
	// notification is not lost.
	dlqErr := n.dlq.PublishToDLQ(ctx, &retry.DLQMessage{
		ID:             notification.ID,
		OriginalTopic:  n.topic,
		OriginalKey:    notification.RecipientID,
		Payload:        value,
		Headers:        msg.Headers,
		Error:          result.Err.Error(),
		Attempts:       result.Attempts,
		FirstAttemptAt: started,
		LastAttemptAt:  time.Now(),
	})
	if dlqErr != nil {
		return fmt.Errorf("failed to publish %s notification (dlq also failed: %v): %w", notification.Type, dlqErr, result.Err)
	}
	return fmt.Errorf("failed to publish %s notification: %w", notification.Type, result.Err)
}

// Close closes the underlying producer
func (n *KafkaNotifier) Close() error {
	if n.producer != nil {
		return n.producer.Close()
	}
	return nil
}

// NoOpNotifier is a no-op implementation of Notifier for testing
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new no-op notifier
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Notify is a no-op
func (n *NoOpNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	return nil
}

// Close is a no-op
func (n *NoOpNotifier) Close() error {
	return nil
}

// notify publishes fire-and-forget; failures are logged, never escalated
func notify(ctx context.Context, notifier Notifier, notification *domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, notification); err != nil {
		logger.Get().Warn("notification publish failed",
			zap.String("type", string(notification.Type)),
			zap.String("recipient_id", notification.RecipientID),
			zap.Error(err),
		)
	}
}
