package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// Store implements domain.Store on PostgreSQL.
// Rows read through a Tx are locked with SELECT ... FOR UPDATE until Commit or Rollback.
type Store struct {
	db *DB
}

// NewStore creates a new store over an open connection
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Begin starts a read-write transaction
func (s *Store) Begin(ctx context.Context) (domain.Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{sqlTx: sqlTx, repos: newRepositories(sqlTx, true)}, nil
}

// View runs fn inside a read-only REPEATABLE READ transaction, so every
// query in fn sees the same snapshot
func (s *Store) View(ctx context.Context, fn func(repos domain.Repositories) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(newRepositories(sqlTx, false)); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

type repositories struct {
	wallets *walletRepository
	goals   *goalRepository
	entries *entryRepository
}

func newRepositories(q querier, lock bool) *repositories {
	return &repositories{
		wallets: &walletRepository{q: q, lock: lock},
		goals:   &goalRepository{q: q, lock: lock},
		entries: &entryRepository{q: q, lock: lock},
	}
}

func (r *repositories) Wallets() domain.WalletRepository { return r.wallets }
func (r *repositories) Goals() domain.GoalRepository     { return r.goals }
func (r *repositories) Entries() domain.EntryRepository  { return r.entries }

type tx struct {
	sqlTx *sql.Tx
	repos *repositories
}

func (t *tx) Wallets() domain.WalletRepository { return t.repos.Wallets() }
func (t *tx) Goals() domain.GoalRepository     { return t.repos.Goals() }
func (t *tx) Entries() domain.EntryRepository  { return t.repos.Entries() }

func (t *tx) Commit() error {
	if err := t.sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *tx) Rollback() error {
	if err := t.sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// forUpdate appends a row lock clause inside read-write transactions
func forUpdate(query string, lock bool) string {
	if lock {
		return query + " FOR UPDATE"
	}
	return query
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time.UTC()
	return &t
}
