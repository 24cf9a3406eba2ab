package domain

import (
	"context"

	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet persistence operations.
// Inside a Tx, GetByID locks the row until the transaction ends.
type WalletRepository interface {
	// GetByID retrieves a wallet by its ID, soft-deleted wallets included
	// Returns ErrNotFound if the wallet does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// List retrieves the wallets of an owner ordered by creation time
	List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*Wallet, error)

	// ListOwners returns every owner that holds at least one wallet
	ListOwners(ctx context.Context) ([]uuid.UUID, error)

	// Create creates a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// Update persists name, balance, updated_at and deleted_at
	Update(ctx context.Context, wallet *Wallet) error
}

// GoalRepository defines the interface for goal persistence operations.
// Inside a Tx, GetByID locks the row until the transaction ends.
type GoalRepository interface {
	// GetByID retrieves a goal by its ID, soft-deleted goals included
	// Returns ErrNotFound if the goal does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)

	// List retrieves the goals of an owner ordered by creation time
	List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*Goal, error)

	// Create creates a new goal
	Create(ctx context.Context, goal *Goal) error

	// Update persists every mutable goal field
	Update(ctx context.Context, goal *Goal) error
}

// EntryFilter narrows entry listings. Zero values mean "no filter".
type EntryFilter struct {
	OwnerID         uuid.UUID
	WalletID        *uuid.UUID // Matches source or counterparty wallet
	GoalID          *uuid.UUID
	Kind            EntryKind
	IncludeReversed bool
	Limit           int // 0 means unlimited
	Offset          int
}

// Matches reports whether e passes every filter except Limit and Offset.
// Stores that cannot filter natively use it to stay in line with SQL semantics.
func (f EntryFilter) Matches(e *Entry) bool {
	if e.OwnerID != f.OwnerID {
		return false
	}
	if !f.IncludeReversed && e.IsReversed() {
		return false
	}
	if f.WalletID != nil && !e.References(*f.WalletID) {
		return false
	}
	if f.GoalID != nil && (e.GoalID == nil || *e.GoalID != *f.GoalID) {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	return true
}

// Paginate applies Offset and Limit to an already ordered slice
func (f EntryFilter) Paginate(entries []*Entry) []*Entry {
	if f.Offset > 0 {
		if f.Offset >= len(entries) {
			return []*Entry{}
		}
		entries = entries[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(entries) {
		entries = entries[:f.Limit]
	}
	return entries
}

// EntryRepository defines the interface for transaction log persistence operations
type EntryRepository interface {
	// GetByID retrieves an entry by its ID
	// Returns ErrNotFound if the entry does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// Append adds a new entry to the log
	Append(ctx context.Context, entry *Entry) error

	// Update persists the mutable fields only: description and reversed_at
	Update(ctx context.Context, entry *Entry) error

	// List retrieves entries matching the filter, newest first
	List(ctx context.Context, filter EntryFilter) ([]*Entry, error)

	// Count returns the number of entries matching the filter, ignoring Limit and Offset
	Count(ctx context.Context, filter EntryFilter) (int, error)

	// HasLiveReferences reports whether any non-reversed entry references the wallet
	HasLiveReferences(ctx context.Context, walletID uuid.UUID) (bool, error)
}

// Repositories groups the repositories visible inside one transaction or view
type Repositories interface {
	Wallets() WalletRepository
	Goals() GoalRepository
	Entries() EntryRepository
}

// Tx is an explicit all-or-nothing unit of work.
// Rollback after Commit is a no-op, so callers may always defer it.
type Tx interface {
	Repositories
	Commit() error
	Rollback() error
}

// Store opens transactions and consistent read-only views
type Store interface {
	// Begin starts a read-write transaction
	Begin(ctx context.Context) (Tx, error)

	// View runs fn against a consistent read-only snapshot
	View(ctx context.Context, fn func(repos Repositories) error) error

	// Close releases the underlying resources
	Close() error
}
