package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"stayhub/internal/shared/config"
	"stayhub/pkg/logger"
)

// Consumer drains booking events and hands each to a Dispatcher. Offsets
// auto-commit after the claim loop returns, so a crashed worker replays at
// most one batch; dispatch must therefore tolerate duplicates.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Dispatcher delivers one booking event to its audience (email, SMS, push).
type Dispatcher interface {
	Dispatch(ctx context.Context, event *BookingEvent) error
}

type kafkaConsumer struct {
	group  sarama.ConsumerGroup
	topic  string
	dsp    Dispatcher
	log    *logger.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(cfg *config.Config, dispatcher Dispatcher, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		group: group,
		topic: cfg.Kafka.Topic,
		dsp:   dispatcher,
		log:   log,
		done:  make(chan struct{}),
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go func() {
		for err := range c.group.Errors() {
			c.log.WithError(err).Error("booking event consumer error")
		}
	}()

	go func() {
		defer close(c.done)
		handler := &groupHandler{dsp: c.dsp, log: c.log}
		for {
			if err := c.group.Consume(runCtx, []string{c.topic}, handler); err != nil {
				c.log.WithError(err).Error("consumer session failed")
			}
			if runCtx.Err() != nil {
				return
			}
		}
	}()

	c.log.Info("booking event consumer started", "topic", c.topic)
	return nil
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	return c.group.Close()
}

type groupHandler struct {
	dsp Dispatcher
	log *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event BookingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			h.log.WithError(err).Error("dropping malformed booking event",
				"partition", message.Partition, "offset", message.Offset)
			session.MarkMessage(message, "")
			continue
		}
		if err := h.dsp.Dispatch(session.Context(), &event); err != nil {
			h.log.WithError(err).Error("failed to dispatch booking event", "type", event.Type)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// LogDispatcher writes each event to the structured log. Stands in for a
// real email/SMS integration.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event *BookingEvent) error {
	d.log.InfoWithContext(ctx, "booking notification", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"booking_id": event.PartitionKey(),
	})
	return nil
}
