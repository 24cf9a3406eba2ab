package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a consistent read of one owner's wallets, goals and entries
type Snapshot struct {
	OwnerID uuid.UUID
	TakenAt time.Time
	Wallets []*Wallet // Soft-deleted wallets included
	Goals   []*Goal   // Soft-deleted goals included
	Entries []*Entry  // Reversed entries included, newest first
}

// ReadSnapshot loads everything an owner has in a single read-only view
func ReadSnapshot(ctx context.Context, store Store, ownerID uuid.UUID, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{OwnerID: ownerID, TakenAt: now}

	err := store.View(ctx, func(repos Repositories) error {
		var err error
		if snap.Wallets, err = repos.Wallets().List(ctx, ownerID, true); err != nil {
			return err
		}
		if snap.Goals, err = repos.Goals().List(ctx, ownerID, true); err != nil {
			return err
		}
		snap.Entries, err = repos.Entries().List(ctx, EntryFilter{OwnerID: ownerID, IncludeReversed: true})
		return err
	})
	if err != nil {
		return nil, StorageError("read snapshot", err)
	}

	return snap, nil
}

// LiveEntries returns the entries that were not reversed
func (s *Snapshot) LiveEntries() []*Entry {
	live := make([]*Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if !e.IsReversed() {
			live = append(live, e)
		}
	}
	return live
}
