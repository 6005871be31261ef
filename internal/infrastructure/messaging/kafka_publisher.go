package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Message headers set on every published event
const (
	HeaderEventType     = "event_type"
	HeaderEventID       = "event_id"
	HeaderAggregateType = "aggregate_type"
)

// DefaultTopic is used when the configuration leaves the topic empty
const DefaultTopic = "stockroom.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to one Kafka topic, keyed by aggregate
// id so events of the same order or product stay in partition order.
type KafkaPublisher struct {
	writer       messageWriter
	serializer   *EventSerializer
	topic        string
	writeTimeout time.Duration
}

// NewKafkaPublisher creates a publisher for the configured brokers
func NewKafkaPublisher(cfg config.EventsConfig) (*KafkaPublisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("events.brokers is empty")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}

	return newKafkaPublisher(writer, topic, cfg.WriteTimeout), nil
}

func newKafkaPublisher(writer messageWriter, topic string, writeTimeout time.Duration) *KafkaPublisher {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &KafkaPublisher{
		writer:       writer,
		serializer:   NewEventSerializer(),
		topic:        topic,
		writeTimeout: writeTimeout,
	}
}

// Publish writes all events in one batch
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := p.serializer.Serialize(e)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", e.EventType(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID().String()),
			Value: value,
			Time:  e.OccurredAt(),
			Headers: []kafka.Header{
				{Key: HeaderEventType, Value: []byte(e.EventType())},
				{Key: HeaderEventID, Value: []byte(e.EventID().String())},
				{Key: HeaderAggregateType, Value: []byte(e.AggregateType())},
			},
		})
	}

	// publishing happens after commit; a cancelled request must not drop the batch
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		logger.L(ctx).Error("Failed to send Kafka messages",
			zap.String("topic", p.topic),
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
		return fmt.Errorf("kafka publish: %w", err)
	}

	logger.L(ctx).Debug("Kafka messages sent",
		zap.String("topic", p.topic),
		zap.Int("count", len(msgs)),
	)
	return nil
}

// Close flushes pending writes and releases connections
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)
