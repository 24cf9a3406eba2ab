package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a committed ledger change
type EventType string

const (
	EventEntryRecorded EventType = "entry.recorded"
	EventEntryReversed EventType = "entry.reversed"
)

// LedgerEvent is published after a coordinator transaction commits
type LedgerEvent struct {
	Type                 EventType  `json:"event"`
	EntryID              uuid.UUID  `json:"entry_id"`
	OwnerID              uuid.UUID  `json:"owner_id"`
	WalletID             uuid.UUID  `json:"wallet_id"`
	GoalID               *uuid.UUID `json:"goal_id,omitempty"`
	CounterpartyWalletID *uuid.UUID `json:"counterparty_wallet_id,omitempty"`
	Kind                 EntryKind  `json:"kind"`
	Amount               Money      `json:"amount"`
	OccurredAt           time.Time  `json:"occurred_at"`
}

// NewLedgerEvent builds the event describing entry
func NewLedgerEvent(eventType EventType, entry *Entry, at time.Time) LedgerEvent {
	return LedgerEvent{
		Type:                 eventType,
		EntryID:              entry.ID,
		OwnerID:              entry.OwnerID,
		WalletID:             entry.WalletID,
		GoalID:               entry.GoalID,
		CounterpartyWalletID: entry.CounterpartyWalletID,
		Kind:                 entry.Kind,
		Amount:               entry.Amount,
		OccurredAt:           at,
	}
}

// EventPublisher delivers ledger events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}
