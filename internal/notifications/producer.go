package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"stayhub/internal/shared/config"
	"stayhub/pkg/logger"
)

// Producer publishes booking lifecycle events to Kafka. It satisfies the
// booking service's EventPublisher interface.
type Producer interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{}) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewProducer connects a synchronous idempotent producer. Events are small
// and infrequent relative to booking traffic, so waiting for all in-sync
// replicas is cheap and loses nothing.
func NewProducer(cfg *config.Config, log *logger.Logger) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("booking event producer connected", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return &kafkaProducer{
		producer: producer,
		topic:    cfg.Kafka.Topic,
		log:      log,
	}, nil
}

func (p *kafkaProducer) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	event := NewBookingEvent(eventType, payload)
	value, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.CreatedAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}
	p.log.Debug("booking event published",
		"type", eventType, "partition", partition, "offset", offset)
	return nil
}

func (p *kafkaProducer) HealthCheck(ctx context.Context) error {
	// SyncProducer keeps its broker connections alive; a closed producer is
	// the only failure mode observable without sending.
	if p.producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}

// noopProducer drops events. Used when Kafka is disabled by config so the
// booking service never has to nil-check its publisher wiring.
type noopProducer struct{}

func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	return nil
}
func (noopProducer) HealthCheck(ctx context.Context) error { return nil }
func (noopProducer) Close() error                          { return nil }
