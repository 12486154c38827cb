package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publishes alerts to a Kafka topic, keyed by postcode.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger,
	}
}

// Publish sends alerts in a single batch.
func (p *KafkaPublisher) Publish(ctx context.Context, alerts ...Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	messages := make([]kafkago.Message, 0, len(alerts))
	for _, a := range alerts {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal alert for %s: %w", a.Postcode, err)
		}

		messages = append(messages, kafkago.Message{
			Key:   []byte(a.Postcode),
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(EventType)},
				{Key: "event_id", Value: []byte(a.ID.String())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("published fraud alerts",
		slog.String("topic", p.topic),
		slog.Int("count", len(messages)),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing writer for topic %s: %w", p.topic, err)
	}
	return nil
}
