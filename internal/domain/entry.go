package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryKind represents the type of balance-affecting event recorded in the log
type EntryKind string

const (
	EntryKindDeposit          EntryKind = "deposit"
	EntryKindWithdrawal       EntryKind = "withdrawal"
	EntryKindGoalContribution EntryKind = "goal_contribution"
	EntryKindTransfer         EntryKind = "transfer"
)

// EntryKinds lists every valid kind in display order
var EntryKinds = []EntryKind{
	EntryKindDeposit,
	EntryKindWithdrawal,
	EntryKindGoalContribution,
	EntryKindTransfer,
}

// ParseEntryKind validates a kind coming from the outside
func ParseEntryKind(s string) (EntryKind, error) {
	for _, k := range EntryKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entry kind %q", ErrInvalidInput, s)
}

// Entry represents one immutable record in the transaction log.
// Only Description may change after creation; ReversedAt is set once by a reversal.
type Entry struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	WalletID             uuid.UUID  // Source wallet for transfers
	GoalID               *uuid.UUID // Set for goal_contribution, optional tag on deposits
	CounterpartyWalletID *uuid.UUID // Destination wallet, transfers only
	Amount               Money      // ABSOLUTE VALUE (Always Positive)
	Kind                 EntryKind
	Description          string
	CreatedAt            time.Time
	ReversedAt           *time.Time // Terminal: a reversed entry is never replayed again
}

// Validate ensures the entry adheres to domain rules
// Returns an error if validation fails
func (e *Entry) Validate() error {
	if e.OwnerID == uuid.Nil || e.WalletID == uuid.Nil {
		return fmt.Errorf("%w: entry must reference an owner and a wallet", ErrInvalidInput)
	}

	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: entry amount", ErrNonPositiveAmount)
	}

	switch e.Kind {
	case EntryKindDeposit, EntryKindWithdrawal:
		if e.CounterpartyWalletID != nil {
			return errors.New("only transfers can reference a counterparty wallet")
		}
	case EntryKindGoalContribution:
		if e.GoalID == nil {
			return errors.New("goal contribution must reference a goal")
		}
		if e.CounterpartyWalletID != nil {
			return errors.New("only transfers can reference a counterparty wallet")
		}
	case EntryKindTransfer:
		if e.CounterpartyWalletID == nil {
			return errors.New("transfer must reference a counterparty wallet")
		}
		if *e.CounterpartyWalletID == e.WalletID {
			return fmt.Errorf("%w: transfer source and destination must differ", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown entry kind %q", ErrInvalidInput, e.Kind)
	}

	return nil
}

// IsReversed reports whether the entry reached its terminal reversed state
func (e *Entry) IsReversed() bool {
	return e.ReversedAt != nil
}

// OwnedBy reports whether the entry belongs to ownerID
func (e *Entry) OwnedBy(ownerID uuid.UUID) bool {
	return e.OwnerID == ownerID
}

// References reports whether the entry touches walletID in any role
func (e *Entry) References(walletID uuid.UUID) bool {
	if e.WalletID == walletID {
		return true
	}
	return e.CounterpartyWalletID != nil && *e.CounterpartyWalletID == walletID
}

// SignedEffect returns the entry's contribution to walletID's balance.
// Reversed entries and unrelated wallets contribute zero.
func (e *Entry) SignedEffect(walletID uuid.UUID) Money {
	if e.IsReversed() {
		return ZeroMoney
	}
	switch e.Kind {
	case EntryKindDeposit:
		if e.WalletID == walletID {
			return e.Amount
		}
	case EntryKindWithdrawal, EntryKindGoalContribution:
		if e.WalletID == walletID {
			return e.Amount.Neg()
		}
	case EntryKindTransfer:
		if e.WalletID == walletID {
			return e.Amount.Neg()
		}
		if e.CounterpartyWalletID != nil && *e.CounterpartyWalletID == walletID {
			return e.Amount
		}
	}
	return ZeroMoney
}

// GoalEffect returns the entry's contribution to goalID's progress
func (e *Entry) GoalEffect(goalID uuid.UUID) Money {
	if e.IsReversed() || e.Kind != EntryKindGoalContribution || e.GoalID == nil || *e.GoalID != goalID {
		return ZeroMoney
	}
	return e.Amount
}
