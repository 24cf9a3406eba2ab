package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger/internal/walletledger"
)

// initialDepositDescription labels the entry that funds a new wallet
const initialDepositDescription = "Initial deposit"

// CreateWalletInput represents the input for creating a wallet
type CreateWalletInput struct {
	Name          string
	InitialAmount domain.Money // Zero or positive
}

// CreateWallet creates a wallet for ownerID
// Logic:
//  1. Validate name and initial amount (>= 0)
//  2. Create the wallet with a zero balance
//  3. If the initial amount is positive, deposit it and append an "Initial deposit" entry
//     in the same transaction so the balance is always backed by the log
func (c *Coordinator) CreateWallet(ctx context.Context, ownerID uuid.UUID, input CreateWalletInput) (*Receipt, error) {
	name, err := domain.NormalizeName(input.Name, "wallet name")
	if err != nil {
		return nil, err
	}
	if input.InitialAmount.IsNegative() {
		return nil, fmt.Errorf("%w: initial amount cannot be negative", domain.ErrInvalidAmount)
	}

	receipt := &Receipt{}
	err = c.inTx(ctx, ownerID, "create wallet", func(tx domain.Tx) error {
		now := c.now()

		wallet := &domain.Wallet{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			Name:      name,
			Balance:   domain.ZeroMoney,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := wallet.Validate(); err != nil {
			return err
		}

		if input.InitialAmount.IsPositive() {
			if _, err := walletledger.Deposit(wallet, input.InitialAmount, now); err != nil {
				return err
			}
			receipt.Entry = &domain.Entry{
				ID:          uuid.New(),
				OwnerID:     ownerID,
				WalletID:    wallet.ID,
				Amount:      input.InitialAmount,
				Kind:        domain.EntryKindDeposit,
				Description: initialDepositDescription,
				CreatedAt:   now,
			}
		}

		if err := tx.Wallets().Create(ctx, wallet); err != nil {
			return domain.StorageError("create wallet", err)
		}
		if receipt.Entry != nil {
			if err := appendEntry(ctx, tx, receipt.Entry); err != nil {
				return err
			}
		}

		receipt.Wallet = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"wallet_id": receipt.Wallet.ID,
		"balance":   receipt.Wallet.Balance.String(),
	}).Info("wallet created")
	if receipt.Entry != nil {
		c.publish(ctx, domain.EventEntryRecorded, receipt.Entry)
	}
	return receipt, nil
}

// RenameWallet changes a wallet's display name
func (c *Coordinator) RenameWallet(ctx context.Context, ownerID, walletID uuid.UUID, name string) (*domain.Wallet, error) {
	name, err := domain.NormalizeName(name, "wallet name")
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	err = c.inTx(ctx, ownerID, "rename wallet", func(tx domain.Tx) error {
		w, err := loadWallet(ctx, tx, ownerID, walletID)
		if err != nil {
			return err
		}

		w.Name = name
		w.UpdatedAt = c.now()
		if err := saveWallet(ctx, tx, w); err != nil {
			return err
		}

		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// DeleteWallet soft deletes a wallet.
// Deletion is refused with ErrReferenced while any live entry references the
// wallet, so history is never destroyed; reverse those entries first.
func (c *Coordinator) DeleteWallet(ctx context.Context, ownerID, walletID uuid.UUID) error {
	err := c.inTx(ctx, ownerID, "delete wallet", func(tx domain.Tx) error {
		w, err := loadWallet(ctx, tx, ownerID, walletID)
		if err != nil {
			return err
		}

		referenced, err := tx.Entries().HasLiveReferences(ctx, w.ID)
		if err != nil {
			return domain.StorageError("check wallet references", err)
		}
		if referenced {
			return fmt.Errorf("wallet %s: %w", w.ID, domain.ErrReferenced)
		}

		now := c.now()
		w.DeletedAt = &now
		w.UpdatedAt = now
		return saveWallet(ctx, tx, w)
	})
	if err != nil {
		return err
	}

	c.Logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"wallet_id": walletID,
	}).Info("wallet deleted")
	return nil
}
