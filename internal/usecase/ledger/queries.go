package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// Queries read through Store.View and take no owner lock

// EntryPage is one page of log entries plus the total matching count
type EntryPage struct {
	Entries []*domain.Entry
	Total   int
}

// GetWallet returns a live wallet owned by ownerID
func (c *Coordinator) GetWallet(ctx context.Context, ownerID, walletID uuid.UUID) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		wallet, err = loadWallet(ctx, repos, ownerID, walletID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", domain.StorageError("view", err))
	}
	return wallet, nil
}

// ListWallets returns the live wallets of ownerID, oldest first
func (c *Coordinator) ListWallets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	var wallets []*domain.Wallet
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		wallets, err = repos.Wallets().List(ctx, ownerID, false)
		return err
	})
	if err != nil {
		return nil, domain.StorageError("list wallets", err)
	}
	return wallets, nil
}

// WalletHistory returns the entries touching a wallet, newest first.
// Reversed entries are included so the audit trail stays complete.
func (c *Coordinator) WalletHistory(ctx context.Context, ownerID, walletID uuid.UUID, limit, offset int) (*EntryPage, error) {
	return c.history(ctx, domain.EntryFilter{
		OwnerID:         ownerID,
		WalletID:        &walletID,
		IncludeReversed: true,
		Limit:           limit,
		Offset:          offset,
	}, func(repos domain.Repositories) error {
		w, err := repos.Wallets().GetByID(ctx, walletID)
		if err != nil {
			return err
		}
		if !w.OwnedBy(ownerID) {
			return domain.NotOwned("wallet")
		}
		return nil
	})
}

// GetGoal returns a live goal owned by ownerID
func (c *Coordinator) GetGoal(ctx context.Context, ownerID, goalID uuid.UUID) (*domain.Goal, error) {
	var goal *domain.Goal
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		goal, err = loadGoal(ctx, repos, ownerID, goalID, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", domain.StorageError("view", err))
	}
	return goal, nil
}

// ListGoals returns the live goals of ownerID, oldest first
func (c *Coordinator) ListGoals(ctx context.Context, ownerID uuid.UUID) ([]*domain.Goal, error) {
	var goals []*domain.Goal
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		goals, err = repos.Goals().List(ctx, ownerID, false)
		return err
	})
	if err != nil {
		return nil, domain.StorageError("list goals", err)
	}
	return goals, nil
}

// GoalHistory returns the contributions made to a goal, newest first.
// History stays readable after the goal is deleted.
func (c *Coordinator) GoalHistory(ctx context.Context, ownerID, goalID uuid.UUID, limit, offset int) (*EntryPage, error) {
	return c.history(ctx, domain.EntryFilter{
		OwnerID:         ownerID,
		GoalID:          &goalID,
		Kind:            domain.EntryKindGoalContribution,
		IncludeReversed: true,
		Limit:           limit,
		Offset:          offset,
	}, func(repos domain.Repositories) error {
		_, err := loadGoal(ctx, repos, ownerID, goalID, true)
		return err
	})
}

// GetEntry returns a single log entry owned by ownerID
func (c *Coordinator) GetEntry(ctx context.Context, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	var entry *domain.Entry
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		var err error
		entry, err = loadEntry(ctx, repos, ownerID, entryID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", domain.StorageError("view", err))
	}
	return entry, nil
}

// ListEntries returns a filtered page of the caller's log. The owner in the
// filter is always replaced by ownerID.
func (c *Coordinator) ListEntries(ctx context.Context, ownerID uuid.UUID, filter domain.EntryFilter) (*EntryPage, error) {
	filter.OwnerID = ownerID
	return c.history(ctx, filter, nil)
}

func (c *Coordinator) history(ctx context.Context, filter domain.EntryFilter, check func(domain.Repositories) error) (*EntryPage, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset cannot be negative", domain.ErrInvalidInput)
	}

	page := &EntryPage{}
	err := c.Store.View(ctx, func(repos domain.Repositories) error {
		if check != nil {
			if err := check(repos); err != nil {
				return err
			}
		}
		var err error
		if page.Entries, err = repos.Entries().List(ctx, filter); err != nil {
			return err
		}
		page.Total, err = repos.Entries().Count(ctx, filter)
		return err
	})
	if err != nil {
		return nil, domain.StorageError("list entries", err)
	}
	return page, nil
}
