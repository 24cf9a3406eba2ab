// Package memory provides a process-local domain.Store used for development and tests
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

var errTxDone = errors.New("transaction already finished")

type entryRecord struct {
	entry *domain.Entry
	seq   uint64
}

// state holds committed rows. Every row is stored as a private copy.
type state struct {
	wallets map[uuid.UUID]*domain.Wallet
	goals   map[uuid.UUID]*domain.Goal
	entries map[uuid.UUID]entryRecord
	seq     uint64
}

// Store is an in-memory implementation of domain.Store.
// Transactions stage their writes and apply them under the write lock on Commit.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		state: state{
			wallets: make(map[uuid.UUID]*domain.Wallet),
			goals:   make(map[uuid.UUID]*domain.Goal),
			entries: make(map[uuid.UUID]entryRecord),
		},
	}
}

// Begin starts a read-write transaction
func (s *Store) Begin(ctx context.Context) (domain.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{
		store:   s,
		wallets: make(map[uuid.UUID]*domain.Wallet),
		goals:   make(map[uuid.UUID]*domain.Goal),
		entries: make(map[uuid.UUID]*domain.Entry),
	}, nil
}

// View runs fn with the read lock held, so fn observes a single consistent state
func (s *Store) View(ctx context.Context, fn func(repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&view{state: &s.state})
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

// tx stages writes on top of the committed state
type tx struct {
	store    *Store
	wallets  map[uuid.UUID]*domain.Wallet
	goals    map[uuid.UUID]*domain.Goal
	entries  map[uuid.UUID]*domain.Entry
	appended []uuid.UUID
	done     bool
}

func (t *tx) Wallets() domain.WalletRepository { return &walletRepo{tx: t} }
func (t *tx) Goals() domain.GoalRepository     { return &goalRepo{tx: t} }
func (t *tx) Entries() domain.EntryRepository  { return &entryRepo{tx: t} }

// Commit applies every staged write atomically
func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range t.wallets {
		s.state.wallets[id] = w
	}
	for id, g := range t.goals {
		s.state.goals[id] = g
	}
	for id, e := range t.entries {
		if rec, ok := s.state.entries[id]; ok {
			rec.entry = e
			s.state.entries[id] = rec
		}
	}
	for _, id := range t.appended {
		s.state.seq++
		s.state.entries[id] = entryRecord{entry: t.entries[id], seq: s.state.seq}
	}

	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *tx) Rollback() error {
	t.done = true
	t.wallets, t.goals, t.entries, t.appended = nil, nil, nil, nil
	return nil
}

func (t *tx) check() error {
	if t.done {
		return errTxDone
	}
	return nil
}

// read runs fn against the committed state under the read lock
func (t *tx) read(fn func(st *state)) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	fn(&t.store.state)
}

// view is the read-only Repositories handed to Store.View callbacks
type view struct {
	state *state
}

func (v *view) Wallets() domain.WalletRepository { return &walletRepo{view: v} }
func (v *view) Goals() domain.GoalRepository     { return &goalRepo{view: v} }
func (v *view) Entries() domain.EntryRepository  { return &entryRepo{view: v} }

var errReadOnly = errors.New("read-only view")

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	if w.DeletedAt != nil {
		t := *w.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneGoal(g *domain.Goal) *domain.Goal {
	c := *g
	if g.EndDate != nil {
		t := *g.EndDate
		c.EndDate = &t
	}
	if g.DeletedAt != nil {
		t := *g.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneEntry(e *domain.Entry) *domain.Entry {
	c := *e
	if e.GoalID != nil {
		id := *e.GoalID
		c.GoalID = &id
	}
	if e.CounterpartyWalletID != nil {
		id := *e.CounterpartyWalletID
		c.CounterpartyWalletID = &id
	}
	if e.ReversedAt != nil {
		t := *e.ReversedAt
		c.ReversedAt = &t
	}
	return &c
}

func sortByCreation[T any](items []T, createdAt func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) < createdAt(items[j])
	})
}
