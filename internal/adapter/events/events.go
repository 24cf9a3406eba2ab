// Package events delivers committed ledger events to logs, Kafka or RabbitMQ
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

func encode(event domain.LedgerEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger event: %w", err)
	}
	return body, nil
}

// LogPublisher writes every event as a structured log line
type LogPublisher struct {
	Logger logrus.FieldLogger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	p.Logger.WithFields(logrus.Fields{
		"event":       event.Type,
		"entry_id":    event.EntryID,
		"owner_id":    event.OwnerID,
		"wallet_id":   event.WalletID,
		"kind":        event.Kind,
		"amount":      event.Amount.String(),
		"occurred_at": event.OccurredAt,
	}).Info("ledger event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Fanout publishes to every target and joins their errors
type Fanout []domain.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.LedgerEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
