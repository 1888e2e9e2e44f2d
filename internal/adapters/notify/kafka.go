package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/negade/gebeya/internal/domain/model"
)

// defaultTopic is where intents land unless configured otherwise.
const defaultTopic = "notifications.intents"

// KafkaEmitter publishes intents as JSON to a Kafka topic. Delivery beyond
// the broker is the downstream notifier's problem.
type KafkaEmitter struct {
	writer *kafka.Writer
}

// KafkaOption applies a configuration option to the KafkaEmitter.
type KafkaOption func(*kafka.Writer)

// WithTopic overrides the target topic.
func WithTopic(topic string) KafkaOption {
	return func(w *kafka.Writer) {
		if topic != "" {
			w.Topic = topic
		}
	}
}

// NewKafkaEmitter creates an emitter publishing to brokers. The writer is
// async with leader-only acks: intent emission must never stall a matching
// run.
func NewKafkaEmitter(brokers []string, opts ...KafkaOption) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        defaultTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return &KafkaEmitter{writer: w}
}

// Emit publishes the intent, keyed by recipient so one actor's
// notifications stay ordered within a partition.
func (e *KafkaEmitter) Emit(ctx context.Context, intent model.NotificationIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("encoding intent: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(intent.RecipientID),
		Value: data,
		Time:  time.Now(),
	}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing intent: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}
