// Package boltdb provides a single-file domain.Store on top of BoltDB.
//
// Wallets, goals and entries live in one bucket each, keyed by id and encoded
// as JSON. Bolt serializes writers, so a read-write Tx holds the database write
// lock from Begin until Commit or Rollback.
package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

var (
	walletsBucket = []byte("wallets")
	goalsBucket   = []byte("goals")
	entriesBucket = []byte("entries")
)

var errReadOnly = errors.New("write attempted in a read-only view")

// Store implements domain.Store on a BoltDB file
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures every bucket exists
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{walletsBucket, goalsBucket, entriesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Begin starts a read-write transaction, blocking while another writer is active
func (s *Store) Begin(ctx context.Context) (domain.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	btx, err := s.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{btx: btx, repos: repositories{btx: btx, writable: true}}, nil
}

// View runs fn against a consistent read-only snapshot
func (s *Store) View(ctx context.Context, fn func(repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(repositories{btx: btx})
	})
}

// Close releases the database file lock
func (s *Store) Close() error {
	return s.db.Close()
}

type repositories struct {
	btx      *bolt.Tx
	writable bool
}

func (r repositories) Wallets() domain.WalletRepository { return &walletRepo{r} }
func (r repositories) Goals() domain.GoalRepository     { return &goalRepo{r} }
func (r repositories) Entries() domain.EntryRepository  { return &entryRepo{r} }

func (r repositories) get(bucket []byte, key []byte, dst any) (bool, error) {
	raw := r.btx.Bucket(bucket).Get(key)
	if raw == nil {
		return false, nil
	}
	if err := decode(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r repositories) put(bucket []byte, key []byte, value any) error {
	if !r.writable {
		return errReadOnly
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", bucket, err)
	}
	return r.btx.Bucket(bucket).Put(key, data)
}

func (r repositories) exists(bucket []byte, key []byte) bool {
	return r.btx.Bucket(bucket).Get(key) != nil
}

type tx struct {
	btx   *bolt.Tx
	repos repositories
	done  bool
}

func (t *tx) Wallets() domain.WalletRepository { return t.repos.Wallets() }
func (t *tx) Goals() domain.GoalRepository     { return t.repos.Goals() }
func (t *tx) Entries() domain.EntryRepository  { return t.repos.Entries() }

func (t *tx) Commit() error {
	if t.done {
		return bolt.ErrTxClosed
	}
	t.done = true
	if err := t.btx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.btx.Rollback()
}
