package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger/internal/goaltracker"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger/internal/walletledger"
)

// RecordDepositInput represents the input for recording a deposit
type RecordDepositInput struct {
	WalletID    uuid.UUID
	Amount      domain.Money
	GoalID      *uuid.UUID // Informational tag only, goal progress is not changed
	Description string
}

// RecordWithdrawalInput represents the input for recording a withdrawal
type RecordWithdrawalInput struct {
	WalletID    uuid.UUID
	Amount      domain.Money
	Description string
}

// ContributeInput represents the input for moving money from a wallet into a goal
type ContributeInput struct {
	GoalID      uuid.UUID
	WalletID    uuid.UUID
	Amount      domain.Money
	Description string // Defaults to "Contribution to goal: <name>"
}

// RecordTransferInput represents the input for moving money between two wallets of one owner
type RecordTransferInput struct {
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
	Amount       domain.Money
	Description  string
}

// RecordDeposit credits a wallet and appends a deposit entry
// Logic:
//  1. Validate amount and description
//  2. Load the wallet (and the tagged goal, if any) checking ownership
//  3. Deposit into the wallet and append the entry in the same transaction
func (c *Coordinator) RecordDeposit(ctx context.Context, ownerID uuid.UUID, input RecordDepositInput) (*Receipt, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("record deposit: %w", domain.ErrNonPositiveAmount)
	}
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{}
	err = c.inTx(ctx, ownerID, "record deposit", func(tx domain.Tx) error {
		now := c.now()

		wallet, err := loadWallet(ctx, tx, ownerID, input.WalletID)
		if err != nil {
			return err
		}

		if input.GoalID != nil {
			if _, err := loadGoal(ctx, tx, ownerID, *input.GoalID, false); err != nil {
				return err
			}
		}

		if _, err := walletledger.Deposit(wallet, input.Amount, now); err != nil {
			return err
		}

		entry := &domain.Entry{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			WalletID:    wallet.ID,
			GoalID:      input.GoalID,
			Amount:      input.Amount,
			Kind:        domain.EntryKindDeposit,
			Description: description,
			CreatedAt:   now,
		}

		if err := saveWallet(ctx, tx, wallet); err != nil {
			return err
		}
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}

		receipt.Entry, receipt.Wallet = entry, wallet
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logEntry("deposit recorded", receipt.Entry)
	c.publish(ctx, domain.EventEntryRecorded, receipt.Entry)
	return receipt, nil
}

// RecordWithdrawal debits a wallet and appends a withdrawal entry
// Logic:
//  1. Validate amount and description
//  2. Load the wallet checking ownership
//  3. Withdraw (fails with ErrInsufficientFunds) and append the entry
func (c *Coordinator) RecordWithdrawal(ctx context.Context, ownerID uuid.UUID, input RecordWithdrawalInput) (*Receipt, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("record withdrawal: %w", domain.ErrNonPositiveAmount)
	}
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{}
	err = c.inTx(ctx, ownerID, "record withdrawal", func(tx domain.Tx) error {
		now := c.now()

		wallet, err := loadWallet(ctx, tx, ownerID, input.WalletID)
		if err != nil {
			return err
		}

		if _, err := walletledger.Withdraw(wallet, input.Amount, now); err != nil {
			return err
		}

		entry := &domain.Entry{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			WalletID:    wallet.ID,
			Amount:      input.Amount,
			Kind:        domain.EntryKindWithdrawal,
			Description: description,
			CreatedAt:   now,
		}

		if err := saveWallet(ctx, tx, wallet); err != nil {
			return err
		}
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}

		receipt.Entry, receipt.Wallet = entry, wallet
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logEntry("withdrawal recorded", receipt.Entry)
	c.publish(ctx, domain.EventEntryRecorded, receipt.Entry)
	return receipt, nil
}

// ContributeToGoal moves money from a wallet into a goal's progress
// Logic:
//  1. Validate amount and description
//  2. Load wallet and goal, both must belong to the caller and be live
//  3. Withdraw from the wallet, add progress to the goal
//  4. Append one goal_contribution entry referencing both
//
// All three effects commit together or none do.
func (c *Coordinator) ContributeToGoal(ctx context.Context, ownerID uuid.UUID, input ContributeInput) (*Receipt, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("contribute to goal: %w", domain.ErrNonPositiveAmount)
	}
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{}
	err = c.inTx(ctx, ownerID, "contribute to goal", func(tx domain.Tx) error {
		now := c.now()

		goal, err := loadGoal(ctx, tx, ownerID, input.GoalID, false)
		if err != nil {
			return err
		}

		wallet, err := loadWallet(ctx, tx, ownerID, input.WalletID)
		if err != nil {
			return err
		}

		if _, err := walletledger.Withdraw(wallet, input.Amount, now); err != nil {
			return err
		}
		if _, err := goaltracker.AddProgress(goal, input.Amount, now); err != nil {
			return err
		}

		if description == "" {
			description = "Contribution to goal: " + goal.Name
		}

		goalID := goal.ID
		entry := &domain.Entry{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			WalletID:    wallet.ID,
			GoalID:      &goalID,
			Amount:      input.Amount,
			Kind:        domain.EntryKindGoalContribution,
			Description: description,
			CreatedAt:   now,
		}

		if err := saveWallet(ctx, tx, wallet); err != nil {
			return err
		}
		if err := saveGoal(ctx, tx, goal); err != nil {
			return err
		}
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}

		receipt.Entry, receipt.Wallet, receipt.Goal = entry, wallet, goal
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logEntry("goal contribution recorded", receipt.Entry)
	c.publish(ctx, domain.EventEntryRecorded, receipt.Entry)
	return receipt, nil
}

// RecordTransfer moves money between two wallets of the same owner
// Logic:
//  1. Validate amount, description and that the wallets differ
//  2. Load both wallets checking ownership
//  3. Withdraw from the source, deposit into the destination
//  4. Append one transfer entry (WalletID is the source)
func (c *Coordinator) RecordTransfer(ctx context.Context, ownerID uuid.UUID, input RecordTransferInput) (*Receipt, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("record transfer: %w", domain.ErrNonPositiveAmount)
	}
	if input.FromWalletID == input.ToWalletID {
		return nil, fmt.Errorf("record transfer: %w: source and destination wallets must differ", domain.ErrInvalidInput)
	}
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{}
	err = c.inTx(ctx, ownerID, "record transfer", func(tx domain.Tx) error {
		now := c.now()

		from, err := loadWallet(ctx, tx, ownerID, input.FromWalletID)
		if err != nil {
			return err
		}
		to, err := loadWallet(ctx, tx, ownerID, input.ToWalletID)
		if err != nil {
			return err
		}

		if _, err := walletledger.Withdraw(from, input.Amount, now); err != nil {
			return err
		}
		if _, err := walletledger.Deposit(to, input.Amount, now); err != nil {
			return err
		}

		if description == "" {
			description = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
		}

		toID := to.ID
		entry := &domain.Entry{
			ID:                   uuid.New(),
			OwnerID:              ownerID,
			WalletID:             from.ID,
			CounterpartyWalletID: &toID,
			Amount:               input.Amount,
			Kind:                 domain.EntryKindTransfer,
			Description:          description,
			CreatedAt:            now,
		}

		if err := saveWallet(ctx, tx, from); err != nil {
			return err
		}
		if err := saveWallet(ctx, tx, to); err != nil {
			return err
		}
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}

		receipt.Entry, receipt.Wallet, receipt.Counterparty = entry, from, to
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logEntry("transfer recorded", receipt.Entry)
	c.publish(ctx, domain.EventEntryRecorded, receipt.Entry)
	return receipt, nil
}

// ReverseEntry undoes the effect of an entry and marks it reversed
// Logic:
//  1. Load the entry checking ownership; a reversed entry cannot be reversed again
//  2. Apply the inverse effect by kind:
//     - deposit: withdraw the amount, ErrIrreversibleState if the balance is short
//     - withdrawal: deposit the amount back
//     - goal_contribution: deposit back and remove min(amount, current) from the goal
//     - transfer: withdraw from the destination (ErrIrreversibleState if short), deposit to the source
//  3. Mark the entry reversed so it is never replayed
func (c *Coordinator) ReverseEntry(ctx context.Context, ownerID, entryID uuid.UUID) (*Receipt, error) {
	receipt := &Receipt{}
	err := c.inTx(ctx, ownerID, "reverse entry", func(tx domain.Tx) error {
		now := c.now()

		entry, err := loadEntry(ctx, tx, ownerID, entryID)
		if err != nil {
			return err
		}
		if entry.IsReversed() {
			return fmt.Errorf("entry %s is already reversed: %w", entry.ID, domain.ErrInvalidTransition)
		}

		wallet, err := loadWallet(ctx, tx, ownerID, entry.WalletID)
		if err != nil {
			return err
		}

		switch entry.Kind {
		case domain.EntryKindDeposit:
			if err := withdrawForReversal(wallet, entry, now); err != nil {
				return err
			}

		case domain.EntryKindWithdrawal:
			if _, err := walletledger.Deposit(wallet, entry.Amount, now); err != nil {
				return err
			}

		case domain.EntryKindGoalContribution:
			if entry.GoalID == nil {
				return fmt.Errorf("%w: contribution %s has no goal", domain.ErrInvalidTransition, entry.ID)
			}
			goal, err := loadGoal(ctx, tx, ownerID, *entry.GoalID, true)
			if err != nil {
				return err
			}
			if _, err := walletledger.Deposit(wallet, entry.Amount, now); err != nil {
				return err
			}
			if _, err := goaltracker.RemoveProgress(goal, entry.Amount, now); err != nil {
				return err
			}
			if err := saveGoal(ctx, tx, goal); err != nil {
				return err
			}
			receipt.Goal = goal

		case domain.EntryKindTransfer:
			if entry.CounterpartyWalletID == nil {
				return fmt.Errorf("%w: transfer %s has no counterparty", domain.ErrInvalidTransition, entry.ID)
			}
			counterparty, err := loadWallet(ctx, tx, ownerID, *entry.CounterpartyWalletID)
			if err != nil {
				return err
			}
			if err := withdrawForReversal(counterparty, entry, now); err != nil {
				return err
			}
			if _, err := walletledger.Deposit(wallet, entry.Amount, now); err != nil {
				return err
			}
			if err := saveWallet(ctx, tx, counterparty); err != nil {
				return err
			}
			receipt.Counterparty = counterparty

		default:
			return fmt.Errorf("%w: unknown entry kind %q", domain.ErrInvalidTransition, entry.Kind)
		}

		if err := saveWallet(ctx, tx, wallet); err != nil {
			return err
		}

		reversedAt := now
		entry.ReversedAt = &reversedAt
		if err := tx.Entries().Update(ctx, entry); err != nil {
			return domain.StorageError("mark entry reversed", err)
		}

		receipt.Entry, receipt.Wallet = entry, wallet
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logEntry("entry reversed", receipt.Entry)
	c.publish(ctx, domain.EventEntryReversed, receipt.Entry)
	return receipt, nil
}

// withdrawForReversal takes back money credited by entry, reporting a short balance as irreversible
func withdrawForReversal(w *domain.Wallet, entry *domain.Entry, now time.Time) error {
	if entry.Amount.GreaterThan(w.Balance) {
		return fmt.Errorf("reversing %s of %s would leave wallet %s negative: %w",
			entry.Kind, entry.Amount, w.ID, domain.ErrIrreversibleState)
	}
	_, err := walletledger.Withdraw(w, entry.Amount, now)
	return err
}

// UpdateEntryDescription edits the only mutable field of an entry.
// Reversed entries keep their description frozen.
func (c *Coordinator) UpdateEntryDescription(ctx context.Context, ownerID, entryID uuid.UUID, description string) (*domain.Entry, error) {
	description, err := domain.NormalizeDescription(description)
	if err != nil {
		return nil, err
	}

	var updated *domain.Entry
	err = c.inTx(ctx, ownerID, "update entry description", func(tx domain.Tx) error {
		entry, err := loadEntry(ctx, tx, ownerID, entryID)
		if err != nil {
			return err
		}
		if entry.IsReversed() {
			return fmt.Errorf("entry %s is reversed: %w", entry.ID, domain.ErrInvalidTransition)
		}

		entry.Description = description
		if err := tx.Entries().Update(ctx, entry); err != nil {
			return domain.StorageError("update entry", err)
		}

		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
