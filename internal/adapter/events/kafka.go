package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// DefaultKafkaTopic receives every ledger event
const DefaultKafkaTopic = "ledger_events"

// kafkaBatchTimeout caps how long a single event waits for a batch to fill.
// Publishing happens inline after each commit, one message at a time.
const kafkaBatchTimeout = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by owner, so one owner's events stay in one partition and in order
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	data, err := encode(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OwnerID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
