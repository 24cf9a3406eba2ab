package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// DefaultExchange is the topic exchange ledger events are published to
const DefaultExchange = "nestegg"

const publishTimeout = 5 * time.Second

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a durable topic exchange, routed by event type
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channelPublisher
	exchange string
}

// NewAMQPPublisher dials url and declares the exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EntryID.String(),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return fmt.Errorf("close channel: %w", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
