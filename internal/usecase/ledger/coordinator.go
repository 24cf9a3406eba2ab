// Package ledger is the only entry point for changing financial state.
// Every operation validates, mutates wallets and goals, appends a log entry
// and commits all of it in one store transaction, or changes nothing.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// Receipt is the committed outcome of a balance-affecting operation
type Receipt struct {
	Entry        *domain.Entry
	Wallet       *domain.Wallet // Wallet debited or credited (source for transfers)
	Counterparty *domain.Wallet // Destination wallet, transfers only
	Goal         *domain.Goal   // Goal touched by a contribution or its reversal
}

// Coordinator enforces atomic multi-entity consistency across wallets, goals and the transaction log
type Coordinator struct {
	Store     domain.Store
	Publisher domain.EventPublisher
	Logger    logrus.FieldLogger

	now   func() time.Time
	locks *ownerLocks
}

// Option customizes a Coordinator
type Option func(*Coordinator)

// WithClock replaces time.Now, used by tests to pin timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a new Coordinator instance.
// publisher may be nil, in which case no events are emitted.
func NewCoordinator(store domain.Store, publisher domain.EventPublisher, logger logrus.FieldLogger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Coordinator{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		locks:     newOwnerLocks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// inTx runs fn inside one store transaction while holding the owner's lock.
// Any error from fn or from Commit leaves the store untouched.
func (c *Coordinator) inTx(ctx context.Context, ownerID uuid.UUID, op string, fn func(tx domain.Tx) error) error {
	if ownerID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	unlock := c.locks.lock(ownerID)
	defer unlock()

	tx, err := c.Store.Begin(ctx)
	if err != nil {
		return domain.StorageError(op+": begin transaction", err)
	}
	defer func() {
		// Rollback after a successful Commit is a no-op
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError(op+": commit transaction", err)
	}

	return nil
}

// publish emits an event for a committed entry. Delivery is best effort.
func (c *Coordinator) publish(ctx context.Context, eventType domain.EventType, entry *domain.Entry) {
	if c.Publisher == nil {
		return
	}
	event := domain.NewLedgerEvent(eventType, entry, c.now())
	if err := c.Publisher.Publish(ctx, event); err != nil {
		c.Logger.WithError(err).WithFields(logrus.Fields{
			"event":    eventType,
			"entry_id": entry.ID,
			"owner_id": entry.OwnerID,
		}).Warn("failed to publish ledger event")
	}
}

func (c *Coordinator) logEntry(msg string, entry *domain.Entry) {
	c.Logger.WithFields(logrus.Fields{
		"owner_id":  entry.OwnerID,
		"wallet_id": entry.WalletID,
		"entry_id":  entry.ID,
		"kind":      entry.Kind,
		"amount":    entry.Amount.String(),
	}).Info(msg)
}

// loadWallet fetches a wallet for mutation and checks that ownerID may use it.
// Soft-deleted wallets are reported as not found.
func loadWallet(ctx context.Context, repos domain.Repositories, ownerID, walletID uuid.UUID) (*domain.Wallet, error) {
	w, err := repos.Wallets().GetByID(ctx, walletID)
	if err != nil {
		return nil, domain.StorageError("load wallet", err)
	}
	if !w.OwnedBy(ownerID) {
		return nil, domain.NotOwned("wallet")
	}
	if w.IsDeleted() {
		return nil, fmt.Errorf("wallet %s: %w", walletID, domain.ErrNotFound)
	}
	return w, nil
}

// loadGoal fetches a goal and checks ownership.
// Soft-deleted goals are only returned when includeDeleted is set.
func loadGoal(ctx context.Context, repos domain.Repositories, ownerID, goalID uuid.UUID, includeDeleted bool) (*domain.Goal, error) {
	g, err := repos.Goals().GetByID(ctx, goalID)
	if err != nil {
		return nil, domain.StorageError("load goal", err)
	}
	if !g.OwnedBy(ownerID) {
		return nil, domain.NotOwned("goal")
	}
	if g.IsDeleted() && !includeDeleted {
		return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrNotFound)
	}
	return g, nil
}

func loadEntry(ctx context.Context, repos domain.Repositories, ownerID, entryID uuid.UUID) (*domain.Entry, error) {
	e, err := repos.Entries().GetByID(ctx, entryID)
	if err != nil {
		return nil, domain.StorageError("load entry", err)
	}
	if !e.OwnedBy(ownerID) {
		return nil, domain.NotOwned("entry")
	}
	return e, nil
}

func saveWallet(ctx context.Context, repos domain.Repositories, w *domain.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return domain.StorageError("update wallet", repos.Wallets().Update(ctx, w))
}

func saveGoal(ctx context.Context, repos domain.Repositories, g *domain.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return domain.StorageError("update goal", repos.Goals().Update(ctx, g))
}

func appendEntry(ctx context.Context, repos domain.Repositories, e *domain.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return domain.StorageError("append entry", repos.Entries().Append(ctx, e))
}
