package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

const walletColumns = `id, owner_id, name, balance, created_at, updated_at, deleted_at`

// walletRepository implements domain.WalletRepository
type walletRepository struct {
	q    querier
	lock bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var w domain.Wallet
	var deletedAt sql.NullTime
	if err := row.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Balance, &w.CreatedAt, &w.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	w.DeletedAt = timePtr(deletedAt)
	return &w, nil
}

// GetByID retrieves a wallet by its ID
func (r *walletRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := forUpdate(`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, r.lock)

	wallet, err := scanWallet(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet by ID: %w", err)
	}
	return wallet, nil
}

// List retrieves the wallets of an owner, oldest first
func (r *walletRepository) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*domain.Wallet, 0)
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}
	return wallets, nil
}

// ListOwners returns every owner holding at least one wallet
func (r *walletRepository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT owner_id FROM wallets ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	owners := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// Create creates a new wallet
func (r *walletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, owner_id, name, balance, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		wallet.ID,
		wallet.OwnerID,
		wallet.Name,
		wallet.Balance,
		wallet.CreatedAt,
		wallet.UpdatedAt,
		wallet.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// Update persists name, balance, updated_at and deleted_at
func (r *walletRepository) Update(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		UPDATE wallets
		SET name = $2, balance = $3, updated_at = $4, deleted_at = $5
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		wallet.ID,
		wallet.Name,
		wallet.Balance,
		wallet.UpdatedAt,
		wallet.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return expectOneRow(result, "wallet", wallet.ID)
}

func expectOneRow(result sql.Result, what string, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
